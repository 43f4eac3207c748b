package models

const (
	PlanFree     = "free"
	PlanBasic    = "basic"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

const (
	GenerationCost       = 10
	PublishCostBasicTier = 100
	PublishCostPaidTier  = 50
	InitialCredits       = 100
)

// PerLocationCost returns the coin price of publishing to one location for
// the given plan tier. Unknown tiers are charged at the basic rate.
func PerLocationCost(planTier string) int64 {
	switch planTier {
	case PlanPro, PlanBusiness:
		return PublishCostPaidTier
	default:
		return PublishCostBasicTier
	}
}
