package tariff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parkledger/internal/domain"
)

func TestRate(t *testing.T) {
	assert.Equal(t, int64(20), Rate(domain.VehicleCar))
	assert.Equal(t, int64(10), Rate(domain.VehicleBike))
	assert.Equal(t, int64(30), Rate(domain.VehicleTruck))
	assert.Equal(t, int64(20), Rate("bus"))
	assert.Equal(t, int64(20), Rate(""))
}

func TestCost(t *testing.T) {
	tests := []struct {
		name  string
		class domain.VehicleClass
		hours float64
		want  int64
	}{
		{name: "car two and a half hours", class: domain.VehicleCar, hours: 2.5, want: 50},
		{name: "bike rounds up once", class: domain.VehicleBike, hours: 1.01, want: 11},
		{name: "truck partial hour", class: domain.VehicleTruck, hours: 0.5, want: 15},
		{name: "car one minute", class: domain.VehicleCar, hours: 1.0 / 60, want: 1},
		{name: "unknown class uses car rate", class: "hovercraft", hours: 2, want: 40},
		{name: "legacy empty class uses car rate", class: "", hours: 1.5, want: 30},
		{name: "zero duration", class: domain.VehicleCar, hours: 0, want: 0},
		{name: "negative duration", class: domain.VehicleCar, hours: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cost(tt.class, tt.hours))
		})
	}
}

func TestCost_FloatNoiseIsNotBilled(t *testing.T) {
	hours := (6 * time.Minute).Hours()
	assert.Greater(t, hours*30, 3.0)
	assert.Equal(t, int64(3), Cost(domain.VehicleTruck, hours))
}

func TestCost_SmallOverageIsBilled(t *testing.T) {
	assert.Equal(t, int64(61), Cost(domain.VehicleCar, (3*time.Hour+10*time.Microsecond).Hours()))
	assert.Equal(t, int64(61), Cost(domain.VehicleCar, (3*time.Hour+time.Nanosecond).Hours()))
	assert.Equal(t, int64(60), Cost(domain.VehicleCar, (3*time.Hour).Hours()))
}

func TestCost_MatchesCeilOfProduct(t *testing.T) {
	for _, class := range domain.VehicleClasses {
		for minutes := 1; minutes <= 24*60; minutes += 7 {
			hours := float64(minutes) / 60
			want := int64(math.Ceil(float64(minutes) * float64(Rate(class)) / 60))
			assert.Equal(t, want, Cost(class, hours), "class=%s minutes=%d", class, minutes)
		}
	}
}
