package apiv1

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoadSpec reads and validates the published API description.
func LoadSpec(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document %s: %w", path, err)
	}
	return doc, nil
}

// Operation identifies a documented route.
type Operation struct {
	Method string
	Path   string
}

// DocumentedOperations lists every method and path in doc, paths in fiber
// syntax ("/licitaciones/:id").
func DocumentedOperations(doc *openapi3.T) []Operation {
	var ops []Operation
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for method := range item.Operations() {
			ops = append(ops, Operation{Method: method, Path: fiberPath(path)})
		}
	}
	return ops
}

func fiberPath(openapiPath string) string {
	out := make([]byte, 0, len(openapiPath))
	for i := 0; i < len(openapiPath); i++ {
		switch openapiPath[i] {
		case '{':
			out = append(out, ':')
		case '}':
		default:
			out = append(out, openapiPath[i])
		}
	}
	return string(out)
}
