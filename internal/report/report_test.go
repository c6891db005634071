package report

import "testing"

func TestDiffAssignments(t *testing.T) {
	before := map[int]int{1: 10, 2: 20}
	after := map[int]int{1: 10, 2: 30, 3: 40}

	changes := DiffAssignments(before, after)
	if len(changes) != 2 {
		t.Fatalf("DiffAssignments() returned %d changes, want 2", len(changes))
	}

	byBooking := make(map[int]AssignmentChange, len(changes))
	for _, c := range changes {
		byBooking[c.BookingID] = c
	}

	if c, ok := byBooking[2]; !ok || c.OldVehicle != 20 || c.NewVehicle != 30 {
		t.Errorf("booking 2 change = %+v, want old 20 new 30", c)
	}
	if c, ok := byBooking[3]; !ok || c.OldVehicle != 0 || c.NewVehicle != 40 {
		t.Errorf("booking 3 change = %+v, want old 0 (new) new 40", c)
	}
}

func TestMetrics_OverallEfficiency(t *testing.T) {
	m := Metrics{TotalActiveKM: 8, TotalDeadKM: 2}
	if got := m.OverallEfficiency(); got != 0.8 {
		t.Errorf("OverallEfficiency() = %v, want 0.8", got)
	}
}

func TestMetrics_OverallEfficiency_NoDistance(t *testing.T) {
	m := Metrics{}
	if got := m.OverallEfficiency(); got != 0 {
		t.Errorf("OverallEfficiency() = %v, want 0", got)
	}
}

func TestMetrics_AssignmentRate(t *testing.T) {
	m := Metrics{TotalBookings: 4, AssignedBookings: 3}
	if got := m.AssignmentRate(); got != 0.75 {
		t.Errorf("AssignmentRate() = %v, want 0.75", got)
	}
}
