package serp

import (
	"hash/fnv"
	"strings"
)

// Volume thresholds for the opportunity decision table.
const (
	volumeCritical = 5000
	volumeHigh     = 2000
	volumeMedium   = 1000
)

// ClassifyOpportunity combines a resolved position and monthly search
// volume into a priority tag. Unranked high-volume keywords are the
// largest latent opportunity; top-10 keywords are deprioritized regardless
// of volume since marginal gains are smaller.
func ClassifyOpportunity(position *int, searchVolume int) string {
	if position == nil {
		switch {
		case searchVolume > volumeCritical:
			return "critical"
		case searchVolume > volumeMedium:
			return "high"
		default:
			return "medium"
		}
	}
	switch {
	case *position > 50:
		if searchVolume > volumeHigh {
			return "high"
		}
		return "medium"
	case *position > 20:
		if searchVolume > volumeCritical {
			return "medium"
		}
		return "low"
	default:
		// top 20, including top 10
		return "low"
	}
}

// EstimateSearchVolume approximates monthly volume from keyword shape when
// the metrics provider is unavailable: fewer, shorter words land in higher
// buckets. The value within each bucket is a pure function of the keyword
// text, so repeated estimates are stable. This is an approximation, not a
// measurement.
func EstimateSearchVolume(keyword string) int {
	length := len(keyword)
	wordCount := len(strings.Fields(keyword))

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(keyword)))
	seed := int(h.Sum32())

	switch {
	case wordCount == 1 && length < 8:
		return 10000 + seed%50000
	case wordCount <= 2 && length < 15:
		return 5000 + seed%20000
	case wordCount <= 3:
		return 1000 + seed%10000
	default:
		return 100 + seed%2000
	}
}
