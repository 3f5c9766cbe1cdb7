package route

import "math"

// Scorer evaluates route candidates for bicycle suitability and selects the
// best alternative. Scoring is a pure function of its inputs: no I/O, no
// randomness, ties broken by first-occurring order.
type Scorer struct {
	classifier SegmentClassifier
}

// NewScorer creates a scorer with the given segment classifier.
// A nil classifier falls back to the keyword heuristic.
func NewScorer(classifier SegmentClassifier) *Scorer {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	return &Scorer{classifier: classifier}
}

// Select returns the best-scoring candidate. A single alternative is returned
// directly without scoring. With multiple alternatives the maximum score wins;
// on a tie the earlier candidate is kept.
func (s *Scorer) Select(alternatives []Candidate, bikeType BikeType, prefs Preferences) Candidate {
	if len(alternatives) == 1 {
		return alternatives[0]
	}

	best := 0
	bestScore := s.Score(alternatives[0], bikeType, prefs)
	for i := 1; i < len(alternatives); i++ {
		if score := s.Score(alternatives[i], bikeType, prefs); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return alternatives[best]
}

// Score computes the scalar suitability score for one candidate.
//
// The score is additive:
//   - distance term, favoring shorter routes, clipped at zero
//   - duration term
//   - bicycle-friendliness ratio of the instruction segments
//   - preference bonuses for highway avoidance and bike paths
//   - exactly one bike-type-specific adjustment
func (s *Scorer) Score(c Candidate, bikeType BikeType, prefs Preferences) float64 {
	distanceKm := c.DistanceMeters / 1000
	durationHours := c.DurationSeconds / 3600

	score := math.Max(0, 100-distanceKm*2)
	score += math.Max(0, 50-durationHours*10)

	bikeRatio, highwayRatio, friendlyRatio := s.segmentRatios(c.Instructions)
	score += friendlyRatio * 100

	if prefs.AvoidHighways {
		score += (1 - highwayRatio) * 50
	}
	if prefs.PreferBikePaths {
		score += bikeRatio * 75
	}

	switch bikeType {
	case BikeCity:
		// Short urban hops
		score += math.Max(0, 50-distanceKm)
	case BikeRoad:
		// Longer, faster rides
		score += math.Min(50, distanceKm*2)
	case BikeMountain:
		if prefs.PreferNature {
			score += 25
		}
	case BikeElectric:
		// Sweet spot around 15 km
		score += math.Max(0, 25-math.Abs(distanceKm-15))
	case BikeCargo:
		// Heavy distance penalty
		score += math.Max(0, 75-distanceKm*3)
	}

	return score
}

// segmentRatios returns the fraction of instruction segments that are bike
// paths, that are highways, and that are bicycle-friendly (bike path or not
// mentioning motorway-class roads). Empty instruction lists yield zero ratios.
func (s *Scorer) segmentRatios(instructions []Instruction) (bikeRatio, highwayRatio, friendlyRatio float64) {
	if len(instructions) == 0 {
		return 0, 0, 0
	}

	var bike, highway, friendly int
	for _, inst := range instructions {
		isBike := s.classifier.IsBikePath(inst.Text)
		isHighway := s.classifier.IsHighway(inst.Text)
		if isBike {
			bike++
		}
		if isHighway {
			highway++
		}
		if isBike || !isHighway {
			friendly++
		}
	}

	n := float64(len(instructions))
	return float64(bike) / n, float64(highway) / n, float64(friendly) / n
}
