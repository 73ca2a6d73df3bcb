package billing

import "github.com/licitaflash/licitaflash/app/models"

// FallbackPlan is granted for any checkout amount missing from the price table.
const FallbackPlan = models.SubscriptionPlanPro

// priceTable maps a checkout amount_total in cents to a plan.
var priceTable = map[int64]string{
	8999: models.SubscriptionPlanUltra,
}

// PlanForAmount resolves the plan bought by a checkout. Amounts that are not
// in the price table, including zero and coupon-reduced totals, fall back to
// pro.
func PlanForAmount(amountTotal int64) string {
	if plan, ok := priceTable[amountTotal]; ok {
		return plan
	}
	return FallbackPlan
}
