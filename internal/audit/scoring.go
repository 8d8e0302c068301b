package audit

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"optimise-growth-tools/internal/models"
)

var actionWordRe = regexp.MustCompile(`(?i)^(get|start|try|buy|sign|join|contact|learn|download)`)

// HeadlineClarity scores the main headline: 9 when its rune length is
// strictly between 10 and 100, else 4.
func HeadlineClarity(headline string) int {
	n := utf8.RuneCountInString(headline)
	if n > 10 && n < 100 {
		return 9
	}
	return 4
}

func trustScore(sig models.ExtractedSignals) int {
	if sig.TrustSignal {
		return 8
	}
	return 4
}

func hierarchyScore(sig models.ExtractedSignals) int {
	if sig.HierarchyComplete {
		return 8
	}
	return 6
}

// AboveFoldScore is the rounded mean of headline clarity, trust and
// heading-hierarchy sub-signals.
func AboveFoldScore(sig models.ExtractedSignals) int {
	return roundMean(HeadlineClarity(sig.MainHeadline), trustScore(sig), hierarchyScore(sig))
}

// ctaTextQuality scores the primary CTA text: 9 for a well-sized text
// starting with an action verb, 6 for well-sized alone, 4 otherwise.
func ctaTextQuality(primary *models.CTACandidate) int {
	if primary == nil {
		return 4
	}
	n := utf8.RuneCountInString(primary.Text)
	goodLength := n > 2 && n < 25
	switch {
	case goodLength && actionWordRe.MatchString(primary.Text):
		return 9
	case goodLength:
		return 6
	default:
		return 4
	}
}

func CTAScore(sig models.ExtractedSignals) int {
	visibility, positioning, sizeColor := 3, 3, 5
	if sig.PrimaryCTA != nil {
		visibility = 7
		positioning = 8
		if containsBtnClass(sig.PrimaryCTA.Classes) {
			sizeColor = 8
		}
	}
	return roundMean(visibility, ctaTextQuality(sig.PrimaryCTA), positioning, sizeColor)
}

func containsBtnClass(classes string) bool {
	return strings.Contains(classes, "btn")
}

// NavigationScore starts at 5 and rewards having navigation at all, a
// simple menu (at most 7 items) and a visible home link.
func NavigationScore(sig models.ExtractedSignals) int {
	score := 5
	if sig.HasNavigation {
		score += 2
	}
	if len(sig.NavigationItems) <= 7 {
		score += 2
	}
	if hasHomeLink(sig.NavigationItems) {
		score++
	}
	if score > 10 {
		score = 10
	}
	return score
}

func hasHomeLink(items []string) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), "home") {
			return true
		}
	}
	return false
}

// ContentScore starts at 5 and rewards a real heading/paragraph structure
// and paragraphs sized for reading (average strictly between 50 and 200
// characters).
func ContentScore(sig models.ExtractedSignals) int {
	score := 5
	if sig.HeadingCount >= 3 && sig.ParagraphCount >= 2 {
		score += 3
	}
	if sig.AvgParagraphLen > 50 && sig.AvgParagraphLen < 200 {
		score += 2
	}
	if score > 10 {
		score = 10
	}
	return score
}

// Score computes all four sub-scores and derives the overall score as
// their rounded mean.
func Score(sig models.ExtractedSignals) models.ScoreSet {
	s := models.ScoreSet{
		AboveFold:  AboveFoldScore(sig),
		CTA:        CTAScore(sig),
		Navigation: NavigationScore(sig),
		Content:    ContentScore(sig),
	}
	s.Overall = roundMean(s.AboveFold, s.CTA, s.Navigation, s.Content)
	return s
}

// roundMean rounds half away from zero: (5+5+6+6)/4 -> 6.
func roundMean(vals ...int) int {
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(vals))))
}
