package ratetable

import "testing"

func TestActivePay_FallsBackToClass1(t *testing.T) {
	table := Default()
	if got := table.ActivePay(99); got != table.ActiveDriverPayPerKM[1] {
		t.Errorf("ActivePay(99) = %v, want class1 rate %v", got, table.ActiveDriverPayPerKM[1])
	}
}

func TestFare(t *testing.T) {
	table := Default()
	// class1: price 20, markup 0.40 -> fare = active*20 + active*0.40*20
	got := table.Fare(10, 1)
	want := 10*20.0 + 10*0.40*20.0
	if got != want {
		t.Errorf("Fare(10, class1) = %v, want %v", got, want)
	}
}

func TestProfit(t *testing.T) {
	table := Default()
	fare := table.Fare(10, 1)
	pay := 10 * table.ActivePay(1)
	want := fare - pay
	if got := table.Profit(10, 1); got != want {
		t.Errorf("Profit(10, class1) = %v, want %v", got, want)
	}
}
