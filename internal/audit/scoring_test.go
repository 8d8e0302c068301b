package audit

import (
	"strings"
	"testing"

	"optimise-growth-tools/internal/models"
)

func TestHeadlineClarityBoundaries(t *testing.T) {
	cases := []struct {
		length int
		want   int
	}{
		{10, 4}, // boundary-exclusive low
		{11, 9},
		{50, 9},
		{99, 9},
		{100, 4}, // boundary-exclusive high
		{0, 4},
	}
	for _, c := range cases {
		h := strings.Repeat("x", c.length)
		if got := HeadlineClarity(h); got != c.want {
			t.Fatalf("HeadlineClarity(len=%d) = %d, want %d", c.length, got, c.want)
		}
	}
}

func TestRoundMean(t *testing.T) {
	if got := roundMean(8, 8, 8, 9); got != 8 {
		t.Fatalf("roundMean(8,8,8,9) = %d, want 8", got)
	}
	if got := roundMean(5, 5, 6, 6); got != 6 {
		t.Fatalf("roundMean(5,5,6,6) = %d, want 6 (round half up)", got)
	}
}

func TestNavigationScoreMonotonicAndBounded(t *testing.T) {
	base := models.ExtractedSignals{}
	for _, hasNav := range []bool{false, true} {
		for _, simple := range []bool{false, true} {
			for _, home := range []bool{false, true} {
				sig := base
				sig.HasNavigation = hasNav
				items := 10
				if simple {
					items = 5
				}
				for i := 0; i < items; i++ {
					sig.NavigationItems = append(sig.NavigationItems, "Link")
				}
				if home {
					sig.NavigationItems[0] = "Home"
				}
				score := NavigationScore(sig)
				if score < 5 || score > 10 {
					t.Fatalf("navigation score out of [5,10]: %d", score)
				}

				// flipping any single factor on never lowers the score
				up := sig
				up.HasNavigation = true
				if NavigationScore(up) < score {
					t.Fatal("hasNavigation must be monotonic non-decreasing")
				}
				up = sig
				up.NavigationItems = sig.NavigationItems[:min(len(sig.NavigationItems), 5)]
				if NavigationScore(up) < score {
					t.Fatal("isSimple must be monotonic non-decreasing")
				}
				up = sig
				up.NavigationItems = append(append([]string{}, sig.NavigationItems...), "Home")
				if len(up.NavigationItems) <= 7 == (len(sig.NavigationItems) <= 7) {
					if NavigationScore(up) < score {
						t.Fatal("hasHomeLink must be monotonic non-decreasing")
					}
				}
			}
		}
	}
}

func TestCTAScore(t *testing.T) {
	// no primary CTA at all
	none := models.ExtractedSignals{}
	// (3 + 4 + 3 + 5) / 4 = 3.75 -> 4
	if got := CTAScore(none); got != 4 {
		t.Fatalf("CTAScore(no CTA) = %d, want 4", got)
	}

	strong := models.ExtractedSignals{
		PrimaryCTA: &models.CTACandidate{Text: "Buy Now", Classes: "btn btn-primary"},
	}
	// (7 + 9 + 8 + 8) / 4 = 8
	if got := CTAScore(strong); got != 8 {
		t.Fatalf("CTAScore(strong CTA) = %d, want 8", got)
	}

	weak := models.ExtractedSignals{
		PrimaryCTA: &models.CTACandidate{Text: "Click here", Classes: "link"},
	}
	// (7 + 6 + 8 + 5) / 4 = 6.5 -> 7
	if got := CTAScore(weak); got != 7 {
		t.Fatalf("CTAScore(weak CTA) = %d, want 7", got)
	}
}

func TestContentScore(t *testing.T) {
	full := models.ExtractedSignals{HeadingCount: 3, ParagraphCount: 4, AvgParagraphLen: 80}
	if got := ContentScore(full); got != 10 {
		t.Fatalf("ContentScore(full) = %d, want 10", got)
	}
	bare := models.ExtractedSignals{}
	if got := ContentScore(bare); got != 5 {
		t.Fatalf("ContentScore(bare) = %d, want 5", got)
	}
	longParas := models.ExtractedSignals{HeadingCount: 1, ParagraphCount: 2, AvgParagraphLen: 250}
	if got := ContentScore(longParas); got != 5 {
		t.Fatalf("ContentScore(long paragraphs) = %d, want 5", got)
	}
}

func TestOverallRecomputedFromSubScores(t *testing.T) {
	sig := models.ExtractedSignals{
		MainHeadline:      strings.Repeat("a", 40),
		TrustSignal:       false,
		HierarchyComplete: true,
		PrimaryCTA:        &models.CTACandidate{Text: "Buy Now", Classes: "btn-primary"},
		HasNavigation:     true,
		NavigationItems:   []string{"One", "Two", "Three", "Four", "Five"},
		HeadingCount:      3,
		ParagraphCount:    4,
		AvgParagraphLen:   80,
	}
	s := Score(sig)
	if s.Overall != roundMean(s.AboveFold, s.CTA, s.Navigation, s.Content) {
		t.Fatalf("overall %d not the rounded mean of %d,%d,%d,%d", s.Overall, s.AboveFold, s.CTA, s.Navigation, s.Content)
	}
}

func TestFindingsOrderAndStatus(t *testing.T) {
	sig := models.ExtractedSignals{
		MainHeadline: strings.Repeat("a", 40),
		PrimaryCTA:   &models.CTACandidate{Text: "Buy Now", Classes: "btn"},
	}
	findings := Findings(sig)
	if len(findings) != 2 {
		t.Fatalf("want 2 findings, got %d", len(findings))
	}
	if findings[0].Category != "Headline Quality" || findings[0].Status != "good" {
		t.Fatalf("unexpected headline finding: %+v", findings[0])
	}
	if findings[1].Category != "Call-to-Action" || findings[1].Status != "good" {
		t.Fatalf("unexpected CTA finding: %+v", findings[1])
	}

	noCTA := models.ExtractedSignals{MainHeadline: "short"}
	findings = Findings(noCTA)
	if findings[0].Status != "critical" {
		t.Fatalf("short headline should be critical, got %s", findings[0].Status)
	}
	if findings[1].Status != "critical" || findings[1].Score != 3 {
		t.Fatalf("missing CTA should be critical with score 3, got %+v", findings[1])
	}
	if findings[1].Message != "No clear primary call-to-action found" {
		t.Fatalf("unexpected message: %q", findings[1].Message)
	}
}

func TestRecommendationsEmission(t *testing.T) {
	// everything healthy: no recommendations
	healthy := models.ExtractedSignals{
		MainHeadline:    strings.Repeat("a", 40),
		PrimaryCTA:      &models.CTACandidate{Text: "Buy Now", Classes: "btn"},
		NavigationItems: []string{"A", "B", "C"},
	}
	if recs := Recommendations(healthy); len(recs) != 0 {
		t.Fatalf("want no recommendations, got %d", len(recs))
	}

	// everything broken: headline, CTA and navigation all flagged, in priority order
	broken := models.ExtractedSignals{
		MainHeadline:    "short",
		NavigationItems: []string{"1", "2", "3", "4", "5", "6", "7", "8"},
	}
	recs := Recommendations(broken)
	if len(recs) != 3 {
		t.Fatalf("want 3 recommendations, got %d", len(recs))
	}
	for i, want := range []string{"Improve Main Headline", "Optimize Primary CTA", "Simplify Navigation"} {
		if recs[i].Title != want || recs[i].Priority != i+1 {
			t.Fatalf("rec %d: got %q priority %d, want %q priority %d", i, recs[i].Title, recs[i].Priority, want, i+1)
		}
	}
}
