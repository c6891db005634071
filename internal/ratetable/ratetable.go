// Package ratetable holds the per-class pay and pricing constants the
// dispatcher uses to turn a completed route into driver pay and
// customer fare.
package ratetable

// Table is keyed by vehicle class, 1 through 9.
type Table struct {
	ActiveDriverPayPerKM map[int]float64
	DeadDriverPayPerKM   map[int]float64
	CustomerPricePerKM   map[int]float64
	DeadKMPercentage     map[int]float64
}

// Default returns the production rate table.
func Default() *Table {
	return &Table{
		ActiveDriverPayPerKM: map[int]float64{
			1: 16, 2: 20, 3: 22, 4: 26, 5: 32, 6: 40, 7: 50, 8: 60, 9: 70,
		},
		DeadDriverPayPerKM: map[int]float64{
			1: 10, 2: 15, 3: 18, 4: 22, 5: 28, 6: 32, 7: 40, 8: 50, 9: 60,
		},
		CustomerPricePerKM: map[int]float64{
			1: 20, 2: 24, 3: 28, 4: 32, 5: 40, 6: 50, 7: 60, 8: 70, 9: 80,
		},
		DeadKMPercentage: map[int]float64{
			1: 0.40, 2: 0.40, 3: 0.40, 4: 0.40, 5: 0.40, 6: 0.30, 7: 0.30, 8: 0.25, 9: 0.25,
		},
	}
}

// ActivePay returns the active-km driver pay rate for a class,
// falling back to class 1 if the class is unknown.
func (t *Table) ActivePay(class int) float64 {
	if v, ok := t.ActiveDriverPayPerKM[class]; ok {
		return v
	}
	return t.ActiveDriverPayPerKM[1]
}

// DeadPay returns the dead-km driver pay rate for a class, falling
// back to class 1 if the class is unknown.
func (t *Table) DeadPay(class int) float64 {
	if v, ok := t.DeadDriverPayPerKM[class]; ok {
		return v
	}
	return t.DeadDriverPayPerKM[1]
}

// Fare returns the customer price for a booking: active distance at
// the class's per-km rate, plus a dead-km surcharge computed as the
// active distance times the class's dead-km percentage and per-km
// rate.
func (t *Table) Fare(activeKM float64, class int) float64 {
	price, ok := t.CustomerPricePerKM[class]
	if !ok {
		price = t.CustomerPricePerKM[1]
	}
	pct, ok := t.DeadKMPercentage[class]
	if !ok {
		pct = t.DeadKMPercentage[1]
	}
	base := activeKM * price
	return base + (activeKM * pct * price)
}

// Profit returns customer fare minus driver pay for a booking's
// active leg (active pay only - dead-km driver pay is accounted for
// separately at the route level, since dead km is a route property,
// not a booking property).
func (t *Table) Profit(activeKM float64, class int) float64 {
	return t.Fare(activeKM, class) - (activeKM * t.ActivePay(class))
}
