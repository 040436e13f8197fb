package domain

import "testing"

func TestDefaultCommissionSchedule(t *testing.T) {
	s := DefaultCommissionSchedule()
	if s.Depth() != 6 {
		t.Fatalf("depth = %d, want 6", s.Depth())
	}
	if got := s.Total(); got != 38 {
		t.Errorf("total = %v, want 38", got)
	}
	if got := s.PercentageAt(1); got != 20 {
		t.Errorf("level 1 = %v, want 20", got)
	}
	if got := s.PercentageAt(4); got != 1.5 {
		t.Errorf("level 4 = %v, want 1.5", got)
	}
	if got := s.PercentageAt(7); got != 0 {
		t.Errorf("level 7 = %v, want 0", got)
	}
	if got := s.PercentageAt(0); got != 0 {
		t.Errorf("level 0 = %v, want 0", got)
	}
}
