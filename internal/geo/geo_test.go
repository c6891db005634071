package geo

import "testing"

func TestHaversine_SamePoint(t *testing.T) {
	p := Point{Lat: 12.97, Lng: 77.59}
	if got := Haversine(p, p); got != 0 {
		t.Errorf("Haversine(p, p) = %v, want 0", got)
	}
}

func TestDistance_AppliesRoadFactor(t *testing.T) {
	a := Point{Lat: 12.97, Lng: 77.59}
	b := Point{Lat: 12.98, Lng: 77.60}

	hav := Haversine(a, b)
	got := Distance(a, b, 1.3)
	want := hav * 1.3
	diff := got - want
	if diff < -0.01 || diff > 0.01 {
		t.Errorf("Distance() = %v, want ~%v", got, want)
	}
}

func TestHexIndex_RingDistanceKM_IdenticalCells(t *testing.T) {
	idx := NewHexIndex(9)
	cell := idx.CellOf(Point{Lat: 12.97, Lng: 77.59})
	if cell == "" {
		t.Fatal("CellOf() returned empty cell for a valid point")
	}
	if got := idx.RingDistanceKM(cell, cell); got != 0 {
		t.Errorf("RingDistanceKM(same, same) = %v, want 0", got)
	}
}

func TestHexIndex_RingDistanceKM_EmptyCell(t *testing.T) {
	idx := NewHexIndex(9)
	cell := idx.CellOf(Point{Lat: 12.97, Lng: 77.59})
	if got := idx.RingDistanceKM("", cell); got <= 1e300 {
		// math.Inf(1) compares greater than any finite float64
		t.Errorf("RingDistanceKM(\"\", cell) = %v, want +Inf", got)
	}
}
