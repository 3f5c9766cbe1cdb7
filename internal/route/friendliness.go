package route

import "strings"

// SegmentClassifier classifies an instruction's text for bicycle suitability.
// It is an interface so the keyword heuristic can be swapped for structured
// tag data when a provider supplies it.
type SegmentClassifier interface {
	// IsBikePath reports whether the text indicates cycle-specific infrastructure.
	IsBikePath(text string) bool
	// IsHighway reports whether the text indicates motorway/highway infrastructure.
	IsHighway(text string) bool
}

// KeywordClassifier matches instruction text against a small vocabulary,
// case-insensitively. This mirrors the free-text turn descriptions routing
// providers emit when no structured way tags are available.
type KeywordClassifier struct{}

var bikePathTerms = []string{
	"cycle",
	"bike path",
	"bike lane",
	"bikeway",
	"fietspad",
	"greenway",
	"towpath",
	"bicycle",
}

var highwayTerms = []string{
	"motorway",
	"highway",
	"freeway",
	"trunk",
	"expressway",
}

// IsBikePath reports whether the text mentions cycle infrastructure.
func (KeywordClassifier) IsBikePath(text string) bool {
	return containsAny(text, bikePathTerms)
}

// IsHighway reports whether the text mentions motorway-class roads.
func (KeywordClassifier) IsHighway(text string) bool {
	return containsAny(text, highwayTerms)
}

func containsAny(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

var _ SegmentClassifier = KeywordClassifier{}
