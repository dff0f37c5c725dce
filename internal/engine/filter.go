package engine

import "math"

// isMerchant reports the merchant heuristic: a broad customer base paying in
// with almost nowhere the money goes out to.
func (e *Engine) isMerchant(p *profile) bool {
	return p.uniqueSenders() >= e.cfg.MerchantMinSenders &&
		p.uniqueReceivers() <= e.cfg.MerchantMaxReceivers
}

// isPayroll reports the payroll heuristic: wide fan-out with very regular
// outgoing amounts (low coefficient of variation).
func (e *Engine) isPayroll(p *profile) bool {
	if p.uniqueReceivers() < e.cfg.PayrollMinReceivers {
		return false
	}
	cv, ok := coefficientOfVariation(p.amountsSent)
	return ok && cv < e.cfg.PayrollMaxCV
}

// isLegitimateHub combines both false-positive heuristics.
func (e *Engine) isLegitimateHub(p *profile) bool {
	if p == nil {
		return false
	}
	return e.isMerchant(p) || e.isPayroll(p)
}

// suppressFalsePositives removes merchant/payroll accounts from smurfing
// findings. These heuristics outrank the structural fan-in/fan-out signal:
// a busy merchant is indistinguishable from a fan-in hub by shape alone.
// Cycle and layering findings pass through untouched, since those patterns
// are independent evidence of a different nature.
//
// A smurfing finding whose hub is suppressed, or that retains fewer than
// three participants, is dropped entirely.
func (e *Engine) suppressFalsePositives(findings []finding, profiles profileIndex) []finding {
	kept := findings[:0]
	for _, f := range findings {
		if f.ringType != RingPatternSmurfing {
			kept = append(kept, f)
			continue
		}

		hub := f.members[0]
		if e.isLegitimateHub(profiles[hub]) {
			continue
		}

		members := make([]string, 0, len(f.members))
		labels := make(map[string]string, len(f.members))
		for _, acc := range f.members {
			if e.isLegitimateHub(profiles[acc]) {
				continue
			}
			members = append(members, acc)
			labels[acc] = f.labels[acc]
		}
		if len(members) < 3 {
			continue
		}

		f.members = members
		f.labels = labels
		kept = append(kept, f)
	}
	return kept
}

// coefficientOfVariation returns stddev/mean over the samples. It reports
// false when the statistic is undefined (fewer than two samples or a
// non-positive mean).
func coefficientOfVariation(samples []float64) (float64, bool) {
	if len(samples) < 2 {
		return 0, false
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))
	if mean <= 0 {
		return 0, false
	}

	var variance float64
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return math.Sqrt(variance) / mean, true
}
