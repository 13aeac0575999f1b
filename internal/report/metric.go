package report

import "sort"

// Reading is one approved refill as the metric engine sees it.
type Reading struct {
	KmReading  float64
	FuelAmount float64
}

// ComputeKmPerLiter derives efficiency for next against the vehicle's
// previous approved reading. It returns nil when there is no previous
// reading, the odometer did not advance, or no fuel was added.
func ComputeKmPerLiter(next Reading, previous *Reading) *float64 {
	if previous == nil {
		return nil
	}
	if next.KmReading <= previous.KmReading || next.FuelAmount <= 0 {
		return nil
	}
	kpl := (next.KmReading - previous.KmReading) / next.FuelAmount
	return &kpl
}

// Totals summarises a vehicle's approved readings, which must already be
// ordered by refill date ascending. Distance is the sum of forward steps
// between consecutive odometer readings, starting from zero.
type Totals struct {
	TotalKmDriven float64
	TotalFuelUsed float64
	AvgKmPerLiter float64
}

func VehicleTotals(readings []Reading) Totals {
	var t Totals
	previousKm := 0.0
	for _, r := range readings {
		if delta := r.KmReading - previousKm; delta > 0 {
			t.TotalKmDriven += delta
		}
		previousKm = r.KmReading
		t.TotalFuelUsed += r.FuelAmount
	}
	if t.TotalFuelUsed > 0 {
		t.AvgKmPerLiter = t.TotalKmDriven / t.TotalFuelUsed
	}
	return t
}

// MeanKmPerLiter averages the non-nil values, or returns 0 when there are none.
func MeanKmPerLiter(values []*float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].RefillDate.Before(points[j].RefillDate)
	})
}
