package audit

import "optimise-growth-tools/internal/models"

// Findings derives status-tagged observations from the extracted signals.
// Order is fixed: headline quality first, then call-to-action.
func Findings(sig models.ExtractedSignals) []models.Finding {
	clarity := HeadlineClarity(sig.MainHeadline)
	var findings []models.Finding

	if clarity >= 8 {
		findings = append(findings, models.Finding{
			Category: "Headline Quality",
			Score:    clarity,
			Status:   "good",
			Message:  "Clear and concise main headline",
		})
	} else {
		status := "critical"
		if clarity >= 6 {
			status = "warning"
		}
		findings = append(findings, models.Finding{
			Category: "Headline Quality",
			Score:    clarity,
			Status:   status,
			Message:  "Headline could be clearer and more compelling",
		})
	}

	if sig.PrimaryCTA != nil {
		quality := ctaTextQuality(sig.PrimaryCTA)
		status, message := "warning", "CTA could be more action-oriented"
		if quality >= 7 {
			status, message = "good", "Strong CTA with clear action"
		}
		findings = append(findings, models.Finding{
			Category: "Call-to-Action",
			Score:    quality,
			Status:   status,
			Message:  message,
		})
	} else {
		findings = append(findings, models.Finding{
			Category: "Call-to-Action",
			Score:    3,
			Status:   "critical",
			Message:  "No clear primary call-to-action found",
		})
	}

	return findings
}

// Recommendations produces the ranked improvement list, capped at 5.
func Recommendations(sig models.ExtractedSignals) []models.Recommendation {
	var recs []models.Recommendation

	if HeadlineClarity(sig.MainHeadline) < 8 {
		recs = append(recs, models.Recommendation{
			Priority:      1,
			Title:         "Improve Main Headline",
			Description:   "Create a clearer, more compelling headline that immediately communicates your value proposition to visitors.",
			Impact:        "High Impact",
			EstimatedLift: "15-25% conversion increase",
		})
	}

	if sig.PrimaryCTA == nil || ctaTextQuality(sig.PrimaryCTA) < 7 {
		recs = append(recs, models.Recommendation{
			Priority:      2,
			Title:         "Optimize Primary CTA",
			Description:   "Create a prominent, action-oriented call-to-action button that stands out and guides users toward your conversion goal.",
			Impact:        "High Impact",
			EstimatedLift: "10-20% conversion increase",
		})
	}

	if len(sig.NavigationItems) > 7 {
		recs = append(recs, models.Recommendation{
			Priority:      3,
			Title:         "Simplify Navigation",
			Description:   "Reduce navigation complexity to 5-7 main categories to improve user experience and reduce decision fatigue.",
			Impact:        "Medium Impact",
			EstimatedLift: "5-10% conversion increase",
		})
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
