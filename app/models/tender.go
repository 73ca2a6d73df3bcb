package models

import "time"

const (
	TenderStatusOpen   = "abierta"
	TenderStatusClosed = "cerrada"
)

// Tender is a public procurement listing. The catalogue is filled by an
// external ingestion job; this service only reads it.
type Tender struct {
	ID                 string     `gorm:"primaryKey;type:uuid" json:"id"`
	Titulo             string     `gorm:"type:text" json:"titulo"`
	OrganoContratacion string     `gorm:"type:text" json:"organo_contratacion"`
	TipoContrato       string     `gorm:"type:text;index" json:"tipo_contrato"`
	PresupuestoBase    *float64   `gorm:"type:numeric" json:"presupuesto_base"`
	FechaPublicacion   *time.Time `gorm:"index" json:"fecha_publicacion"`
	FechaLimite        *time.Time `json:"fecha_limite"`
	Estado             string     `gorm:"type:text;index" json:"estado"`
	CPV                string     `gorm:"column:cpv;type:text" json:"cpv"`
	LugarEjecucion     string     `gorm:"type:text" json:"lugar_ejecucion"`
	EnlaceLicitacion   string     `gorm:"type:text" json:"enlace_licitacion"`
	ResumenIA          *string    `gorm:"column:resumen_ia;type:text" json:"resumen_ia"`
}

func (Tender) TableName() string {
	return "licitaciones"
}

// IsOpen reports whether the tender still accepts bids.
func (t *Tender) IsOpen() bool {
	return t.Estado == TenderStatusOpen
}
