package rates

import (
	"fmt"
	"math"

	"cloud.google.com/go/civil"
)

// standardSBaseRatePer10A is the monthly base charge per 10 A of contracted
// amperage, in yen.
const standardSBaseRatePer10A = 311.75

// StandardSConstants returns the hand-maintained Standard S plan constants.
// These mirror the published tariff sheet and are not derived from scraping;
// update them here when the plan itself is revised.
func StandardSConstants() PlanConstants {
	base := make(map[string]float64, 6)
	for ampere := 10; ampere <= 60; ampere += 10 {
		base[fmt.Sprintf("%dA", ampere)] = math.Round(standardSBaseRatePer10A*float64(ampere)/10*100) / 100
	}

	tier1Max, tier2Max := 120, 300
	return PlanConstants{
		BaseRatePer10A: standardSBaseRatePer10A,
		BaseRates:      base,
		UsageRates: []UsageTier{
			{Min: 0, Max: &tier1Max, Price: 29.80},
			{Min: 121, Max: &tier2Max, Price: 36.40},
			{Min: 301, Max: nil, Price: 40.49},
		},
	}
}

// AssembleSnapshot resolves both series at the reference date and packages
// the result with the plan constants. Pure data transformation: resolver
// failures become null markers rather than errors, because stale-but-present
// data is still useful downstream. The two resolutions are independent;
// one failing never blocks the other.
func AssembleSnapshot(ref civil.Date, fuel, levy Series) Snapshot {
	cur := CurrentRates{
		Year:    ref.Year,
		Month:   int(ref.Month),
		DateISO: ref.String(),
	}
	if rec, err := ResolveRate(fuel, ref); err == nil {
		v := rec.Value
		cur.FuelAdjustment = &v
	}
	if rec, err := ResolveRate(levy, ref); err == nil {
		v := rec.Value
		cur.RenewableEnergyLevy = &v
	}

	return Snapshot{
		CurrentRates:        cur,
		FuelAdjustment:      fuel,
		StandardS:           StandardSConstants(),
		RenewableEnergyLevy: levy,
	}
}
