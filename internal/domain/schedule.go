package domain

// CommissionLevel maps one upline level to its payout percentage.
type CommissionLevel struct {
	Level      int     `json:"level"`
	Percentage float64 `json:"percentage"`
}

// CommissionSchedule is the ordered per-level payout table used by the
// distribution engine. It is built once and injected; nothing mutates it
// after construction.
type CommissionSchedule []CommissionLevel

// DefaultCommissionSchedule returns the standard 6-level table (38% total).
func DefaultCommissionSchedule() CommissionSchedule {
	return CommissionSchedule{
		{Level: 1, Percentage: 20},
		{Level: 2, Percentage: 10},
		{Level: 3, Percentage: 5},
		{Level: 4, Percentage: 1.5},
		{Level: 5, Percentage: 1},
		{Level: 6, Percentage: 0.5},
	}
}

// PercentageAt returns the payout percentage for the given level, or 0 when
// the level has no entry.
func (s CommissionSchedule) PercentageAt(level int) float64 {
	for _, l := range s {
		if l.Level == level {
			return l.Percentage
		}
	}
	return 0
}

// Total is the sum of all level percentages.
func (s CommissionSchedule) Total() float64 {
	var sum float64
	for _, l := range s {
		sum += l.Percentage
	}
	return sum
}

// Depth is the number of upline levels the schedule covers.
func (s CommissionSchedule) Depth() int { return len(s) }
