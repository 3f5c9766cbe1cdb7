package route

import (
	"errors"
	"testing"
)

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"valid", Coordinate{Lat: 52.37, Lon: 4.89}, false},
		{"lat upper bound", Coordinate{Lat: 90, Lon: 0}, false},
		{"lat lower bound", Coordinate{Lat: -90, Lon: 0}, false},
		{"lon bounds", Coordinate{Lat: 0, Lon: -180}, false},
		{"lat too high", Coordinate{Lat: 90.1, Lon: 0}, true},
		{"lat too low", Coordinate{Lat: -90.1, Lon: 0}, true},
		{"lon too high", Coordinate{Lat: 0, Lon: 180.1}, true},
		{"lon too low", Coordinate{Lat: 0, Lon: -180.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("error should wrap ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}

func TestCoordinate_Near(t *testing.T) {
	a := Coordinate{Lat: 52.37020, Lon: 4.89520}

	tests := []struct {
		name  string
		other Coordinate
		want  bool
	}{
		{"identical", a, true},
		{"within tolerance", Coordinate{Lat: 52.37025, Lon: 4.89525}, true},
		{"beyond on lat", Coordinate{Lat: 52.37040, Lon: 4.89520}, false},
		{"beyond on lon", Coordinate{Lat: 52.37020, Lon: 4.89540}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Near(tt.other, CoordTolerance); got != tt.want {
				t.Errorf("Near() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBikeType_AverageSpeedKmh(t *testing.T) {
	tests := []struct {
		bikeType BikeType
		want     float64
	}{
		{BikeCity, 15},
		{BikeMountain, 12},
		{BikeRoad, 25},
		{BikeElectric, 22},
		{BikeCargo, 12},
		{BikeType("unknown"), 15},
	}

	for _, tt := range tests {
		if got := tt.bikeType.AverageSpeedKmh(); got != tt.want {
			t.Errorf("AverageSpeedKmh(%s) = %v, want %v", tt.bikeType, got, tt.want)
		}
	}
}

func TestBikeType_Valid(t *testing.T) {
	for _, bt := range []BikeType{BikeCity, BikeMountain, BikeRoad, BikeElectric, BikeCargo} {
		if !bt.Valid() {
			t.Errorf("Valid(%s) = false, want true", bt)
		}
	}
	if BikeType("unicycle").Valid() {
		t.Error("Valid(unicycle) = true, want false")
	}
}

func TestRoute_FormattedDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0m"},
		{59, "0m"},
		{60, "1m"},
		{1380, "23m"},
		{3600, "1h 0m"},
		{4980, "1h 23m"},
		{7265, "2h 1m"},
	}

	for _, tt := range tests {
		r := &Route{DurationSeconds: tt.seconds}
		if got := r.FormattedDuration(); got != tt.want {
			t.Errorf("FormattedDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{
		Provider: "openrouteservice",
		Code:     "2009",
		Message:  "no routable point",
		Err:      ErrNoRouteFound,
	}

	if !errors.Is(err, ErrNoRouteFound) {
		t.Error("ProviderError must unwrap to its sentinel")
	}
	if err.IsRetryable() {
		t.Error("no-route errors are not retryable")
	}

	retryable := &ProviderError{Provider: "osrm", Message: "timeout", Err: ErrProviderUnavailable}
	if !retryable.IsRetryable() {
		t.Error("unavailable providers are retryable")
	}
}
