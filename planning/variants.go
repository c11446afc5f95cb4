package planning

// Variant parameterizes one candidate plan: a cost multiplier, an
// activity density, and its own daily-spend estimate and FX
// assumption, per §4.2.
type Variant struct {
	Name            string
	CostMultiplier  float64
	Density         float64
	DailySpendCents int64
	FXRate          float64
}

var (
	variantCostConscious = Variant{Name: "cost-conscious", CostMultiplier: 0.7, Density: 0.8, DailySpendCents: 6000, FXRate: 1.0}
	variantConvenience   = Variant{Name: "convenience", CostMultiplier: 1.0, Density: 1.0, DailySpendCents: 9000, FXRate: 1.0}
	variantExperience    = Variant{Name: "experience", CostMultiplier: 1.3, Density: 1.1, DailySpendCents: 14000, FXRate: 1.0}
	variantRelaxed       = Variant{Name: "relaxed", CostMultiplier: 0.9, Density: 0.6, DailySpendCents: 7000, FXRate: 1.0}
)

// convenienceBudgetFloorCents and experienceBudgetFloorCents are the
// budget thresholds (in USD cents) gating
// convenience/experience variant emission.
const (
	convenienceBudgetFloorCents = 1000 * 100
	experienceBudgetFloorCents  = 2000 * 100
)
