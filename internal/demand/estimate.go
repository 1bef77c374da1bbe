package demand

import "demandest/internal/campaign"

// Result carries the blended estimate and the intermediate figures the
// callers report alongside it. Pointer fields are nil when the value could
// not be computed; EarlierEmpty/LaterEmpty flag periods with no usable
// demand, which are warnings rather than errors.
type Result struct {
	Estimate        *float64
	EarlierMean     *float64
	AdjustedEarlier *float64
	LaterMean       *float64
	EarlierEmpty    bool
	LaterEmpty      bool
}

// Unestimable reports that neither period produced a mean.
func (r Result) Unestimable() bool {
	return r.EarlierEmpty && r.LaterEmpty
}

// Mean averages the demand of rows, skipping rows whose demand did not
// parse. Returns nil when no row contributes a value.
func Mean(rows []campaign.Record) *float64 {
	sum := 0.0
	n := 0
	for _, r := range rows {
		if r.Demand == nil {
			continue
		}
		sum += *r.Demand
		n++
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

// Estimate blends the two period means into one figure: the earlier mean is
// grown by growthPercent, then averaged with the later mean. A missing
// period mean propagates as absent; when only one side is present that side
// is the estimate, and when both are absent there is no estimate.
func Estimate(earlier, later []campaign.Record, growthPercent float64) Result {
	res := Result{
		EarlierMean: Mean(earlier),
		LaterMean:   Mean(later),
	}
	if res.EarlierMean != nil {
		adj := *res.EarlierMean * (1 + growthPercent/100)
		res.AdjustedEarlier = &adj
	}
	res.EarlierEmpty = res.EarlierMean == nil
	res.LaterEmpty = res.LaterMean == nil

	switch {
	case res.AdjustedEarlier != nil && res.LaterMean != nil:
		est := (*res.AdjustedEarlier + *res.LaterMean) / 2
		res.Estimate = &est
	case res.AdjustedEarlier != nil:
		est := *res.AdjustedEarlier
		res.Estimate = &est
	case res.LaterMean != nil:
		est := *res.LaterMean
		res.Estimate = &est
	}
	return res
}
