package route

// difficultyThresholds define per-bike-type classification cut-offs.
//
// Classification combines total distance with climbing intensity (elevation
// gain per kilometer). The thresholds differ per bike type:
//
//	city:     short utility rides; anything past 40 km or 20 m/km is hard.
//	mountain: climbing-driven; above 50 m/km the route is hard regardless of
//	          distance, above 80 m/km it is expert terrain.
//	road:     distance-tolerant; only very long or very hilly rides rate hard.
//	electric: motor assistance roughly doubles the comfortable gain per km.
//	cargo:    load-limited; both distance and gain thresholds sit lowest.
type difficultyThresholds struct {
	expertKm, expertGain float64 // either crossing rates expert
	hardKm, hardGain     float64
	moderateKm, modGain  float64
}

var thresholdsByBike = map[BikeType]difficultyThresholds{
	BikeCity:     {expertKm: 60, expertGain: 40, hardKm: 40, hardGain: 20, moderateKm: 20, modGain: 10},
	BikeMountain: {expertKm: 80, expertGain: 80, hardKm: 1e9, hardGain: 50, moderateKm: 40, modGain: 25},
	BikeRoad:     {expertKm: 120, expertGain: 40, hardKm: 80, hardGain: 25, moderateKm: 40, modGain: 10},
	BikeElectric: {expertKm: 120, expertGain: 80, hardKm: 80, hardGain: 60, moderateKm: 40, modGain: 30},
	BikeCargo:    {expertKm: 50, expertGain: 30, hardKm: 30, hardGain: 15, moderateKm: 15, modGain: 8},
}

// ClassifyDifficulty rates a route for the given bike type from its total
// distance and elevation gain.
func ClassifyDifficulty(bikeType BikeType, distanceMeters, elevationGainM float64) Difficulty {
	t, ok := thresholdsByBike[bikeType]
	if !ok {
		t = thresholdsByBike[BikeCity]
	}

	km := distanceMeters / 1000
	gainPerKm := 0.0
	if km > 0 {
		gainPerKm = elevationGainM / km
	}

	switch {
	case km >= t.expertKm || gainPerKm >= t.expertGain:
		return DifficultyExpert
	case km >= t.hardKm || gainPerKm >= t.hardGain:
		return DifficultyHard
	case km >= t.moderateKm || gainPerKm >= t.modGain:
		return DifficultyModerate
	default:
		return DifficultyEasy
	}
}

// DefaultSurface returns the surface assumed when a provider supplies no
// surface data. Mountain routes are assumed mixed, everything else asphalt.
func DefaultSurface(bikeType BikeType) Surface {
	if bikeType == BikeMountain {
		return SurfaceMixed
	}
	return SurfaceAsphalt
}
