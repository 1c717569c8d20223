// Package tariff maps a vehicle class and a parking duration to a fee.
//
// Fees are whole currency units. The hourly rate is applied to the exact
// fractional duration and the product is rounded up once, so 2.5h of a car
// costs ceil(2.5*20) = 50 and not 3 started hours.
package tariff

import (
	"math"

	"parkledger/internal/domain"
)

// Hourly rates in currency units.
var rates = map[domain.VehicleClass]int64{
	domain.VehicleCar:   20,
	domain.VehicleBike:  10,
	domain.VehicleTruck: 30,
}

// Rate returns the hourly rate for class. Classes outside the known set are
// billed at the car rate; entry validation rejects them, but records written
// before that check existed may still carry them.
func Rate(class domain.VehicleClass) int64 {
	if r, ok := rates[class]; ok {
		return r
	}
	return rates[domain.VehicleCar]
}

// noiseTolerance is relative to the product and spans a few float64 ulps.
const noiseTolerance = 1e-14

// Cost returns ceil(durationHours * Rate(class)). A product that exceeds an
// integer by no more than noiseTolerance of its magnitude is treated as that
// integer, so rounding error from the hours conversion (0.1h * 30 =
// 3.0000000000000004) is not billed as an extra unit. Any real overage is
// still billed: a car parked 3h plus one nanosecond pays 61. Negative or zero
// durations cost nothing.
func Cost(class domain.VehicleClass, durationHours float64) int64 {
	if durationHours <= 0 || math.IsNaN(durationHours) {
		return 0
	}
	amount := durationHours * float64(Rate(class))
	if whole := math.Floor(amount); amount-whole <= amount*noiseTolerance {
		return int64(whole)
	}
	return int64(math.Ceil(amount))
}
