package engine

// velocityBonus is the flat suspicion increment for sustained high velocity.
const velocityBonus = 15

// hasHighVelocity reports whether the account's transaction rate, sustained
// over its observed span, exceeds the configured rate. Velocity is an
// augmentation signal only: it never flags an account on its own and is
// applied solely to accounts already implicated by a structural detector.
func (e *Engine) hasHighVelocity(p *profile) bool {
	if p == nil || len(p.timestamps) < e.cfg.VelocityMinTx {
		return false
	}

	span := p.timestamps[len(p.timestamps)-1].Sub(p.timestamps[0]).Seconds()
	if span <= 0 {
		// All transfers inside one clock tick still count as one second
		// of activity rather than an infinite rate.
		span = 1
	}

	perHour := float64(len(p.timestamps)) / (span / 3600)
	return perHour > e.cfg.VelocityPerHour
}
