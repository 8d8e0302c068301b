package extractor

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"optimise-growth-tools/internal/models"
)

// Selector sets for the three signal groups. The contract is the selector
// list, not the query mechanism.
const (
	ctaSelector     = `button, a[href], input[type="submit"], .btn, .button, [role="button"]`
	navSelector     = `nav, .navigation, .nav, .menu, [role="navigation"]`
	navLinkSelector = `nav a, .navigation a, .nav a, .menu a`
	previewCTASel   = `button, .btn, .button, [role="button"]`
)

var trustKeywords = []string{
	"testimonial", "review", "customer", "trusted", "rating",
	"star", "guarantee", "secure", "certified",
}

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// Extract parses the page and pulls every signal the scoring engine needs.
// Missing elements never fail extraction; absence yields empty collections
// and zero values. A body that cannot be fully read or parsed is an error:
// signals from a truncated page must never be scored.
func (e *Extractor) Extract(r io.Reader, contentType, conversionGoal string) (models.ExtractedSignals, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return models.ExtractedSignals{}, err
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return models.ExtractedSignals{}, err
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return models.ExtractedSignals{}, err
	}

	doc.Find("script,noscript,style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	sig := models.ExtractedSignals{}
	e.extractHeadlines(doc, &sig)
	e.extractTrust(doc, &sig)
	e.extractHierarchy(doc, &sig)
	e.extractCTAs(doc, conversionGoal, &sig)
	e.extractNavigation(doc, &sig)
	e.extractContentStructure(doc, &sig)
	sig.Preview = e.extractPreview(doc)
	return sig, nil
}

// extractHeadlines collects all h1 texts plus the first three h2 texts;
// the main headline is the first non-empty candidate.
func (e *Extractor) extractHeadlines(doc *goquery.Document, sig *models.ExtractedSignals) {
	var headlines []string
	doc.Find("h1").Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			headlines = append(headlines, t)
		}
	})
	doc.Find("h2").Slice(0, min(doc.Find("h2").Length(), 3)).Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			headlines = append(headlines, t)
		}
	})
	sig.Headlines = headlines
	if len(headlines) > 0 {
		sig.MainHeadline = headlines[0]
	}
}

func (e *Extractor) extractTrust(doc *goquery.Document, sig *models.ExtractedSignals) {
	pageText := strings.ToLower(doc.Find("body").Text())
	for _, kw := range trustKeywords {
		if strings.Contains(pageText, kw) {
			sig.TrustSignal = true
			return
		}
	}
}

func (e *Extractor) extractHierarchy(doc *goquery.Document, sig *models.ExtractedSignals) {
	sig.HierarchyComplete = doc.Find("h1").Length() > 0 &&
		doc.Find("h2").Length() > 0 &&
		doc.Find("img").Length() > 0
}

// extractCTAs reduces interactive controls to candidates with non-empty
// text. A candidate is primary when its text contains the conversion goal
// or its class attribute carries a primary/CTA marker. The primary CTA is
// the first primary candidate, falling back to the first candidate overall.
func (e *Extractor) extractCTAs(doc *goquery.Document, goal string, sig *models.ExtractedSignals) {
	goalLower := strings.ToLower(goal)
	var candidates []models.CTACandidate
	doc.Find(ctaSelector).Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		classes := s.AttrOr("class", "")
		c := models.CTACandidate{
			Text:    text,
			Classes: classes,
			Href:    s.AttrOr("href", ""),
		}
		c.IsPrimary = (goalLower != "" && strings.Contains(strings.ToLower(text), goalLower)) ||
			strings.Contains(classes, "primary") ||
			strings.Contains(classes, "btn-primary") ||
			strings.Contains(classes, "cta")
		candidates = append(candidates, c)
	})
	sig.CTACandidates = candidates

	for i := range candidates {
		if candidates[i].IsPrimary {
			sig.PrimaryCTA = &candidates[i]
			return
		}
	}
	if len(candidates) > 0 {
		sig.PrimaryCTA = &candidates[0]
	}
}

func (e *Extractor) extractNavigation(doc *goquery.Document, sig *models.ExtractedSignals) {
	containers := doc.Find(navSelector)
	sig.HasNavigation = containers.Length() > 0
	containers.Find("a").Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			sig.NavigationItems = append(sig.NavigationItems, t)
		}
	})
}

func (e *Extractor) extractContentStructure(doc *goquery.Document, sig *models.ExtractedSignals) {
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) != "" {
			sig.HeadingCount++
		}
	})
	total := 0
	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(t) > 20 {
			sig.ParagraphCount++
			total += utf8.RuneCountInString(t)
		}
	})
	if sig.ParagraphCount > 0 {
		sig.AvgParagraphLen = float64(total) / float64(sig.ParagraphCount)
	}
}

// extractPreview builds the trimmed content extract persisted with the
// audit record: headline, up to 5 sub-headlines, 8 navigation items and 6
// CTA texts.
func (e *Extractor) extractPreview(doc *goquery.Document) models.ContentPreview {
	p := models.ContentPreview{
		Headline: strings.TrimSpace(doc.Find("h1").First().Text()),
	}
	sub := doc.Find("h2, h3")
	sub.Slice(0, min(sub.Length(), 5)).Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			p.SubHeadlines = append(p.SubHeadlines, t)
		}
	})
	doc.Find(navLinkSelector).Each(func(i int, s *goquery.Selection) {
		if len(p.NavigationItems) >= 8 {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			p.NavigationItems = append(p.NavigationItems, t)
		}
	})
	doc.Find(previewCTASel).Each(func(i int, s *goquery.Selection) {
		if len(p.CTATexts) >= 6 {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			p.CTATexts = append(p.CTATexts, t)
		}
	})
	return p
}
