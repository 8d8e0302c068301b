package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://google.serper.dev/search"

// Client queries the Serper search-results API. Without an API key every
// search returns an empty result list, which downstream code treats as
// not-found.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

type searchRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl,omitempty"`
	Loc string `json:"loc,omitempty"`
	HL  string `json:"hl"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Organic []Result `json:"organic"`
}

// Search returns up to 100 rank-ordered organic results for the keyword in
// the given location.
func (c *Client) Search(ctx context.Context, keyword, location string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	gl, loc := parseLocation(location)
	payload, err := json.Marshal(searchRequest{
		Q:   keyword,
		GL:  gl,
		Loc: loc,
		HL:  "en",
		Num: 100,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper api error: %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}
	return sr.Organic, nil
}

// parseLocation splits a "country:city" code into country targeting plus a
// provider location string; bare codes target the country alone.
func parseLocation(location string) (gl, loc string) {
	if i := strings.Index(location, ":"); i >= 0 {
		country, city := location[:i], location[i+1:]
		return country, cityLocation(country, city)
	}
	return location, ""
}

var cityLocations = map[string]string{
	"us:new-york":    "New York, NY, United States",
	"us:los-angeles": "Los Angeles, CA, United States",
	"us:chicago":     "Chicago, IL, United States",
	"us:houston":     "Houston, TX, United States",
	"us:miami":       "Miami, FL, United States",
	"us:atlanta":     "Atlanta, GA, United States",
	"us:seattle":     "Seattle, WA, United States",
	"us:denver":      "Denver, CO, United States",
	"ca:toronto":     "Toronto, ON, Canada",
	"ca:vancouver":   "Vancouver, BC, Canada",
	"ca:montreal":    "Montreal, QC, Canada",
	"gb:london":      "London, England, United Kingdom",
	"gb:manchester":  "Manchester, England, United Kingdom",
	"gb:birmingham":  "Birmingham, England, United Kingdom",
	"au:sydney":      "Sydney, NSW, Australia",
	"au:melbourne":   "Melbourne, VIC, Australia",
	"au:brisbane":    "Brisbane, QLD, Australia",
	"au:perth":       "Perth, WA, Australia",
	"de:berlin":      "Berlin, Germany",
	"de:munich":      "Munich, Germany",
	"de:hamburg":     "Hamburg, Germany",
	"fr:paris":       "Paris, France",
	"fr:lyon":        "Lyon, France",
	"es:madrid":      "Madrid, Spain",
	"es:barcelona":   "Barcelona, Spain",
	"it:rome":        "Rome, Italy",
	"it:milan":       "Milan, Italy",
	"nl:amsterdam":   "Amsterdam, Netherlands",
	"br:sao-paulo":   "São Paulo, Brazil",
	"mx:mexico-city": "Mexico City, Mexico",
	"in:mumbai":      "Mumbai, India",
	"in:delhi":       "New Delhi, India",
	"in:bangalore":   "Bangalore, India",
	"jp:tokyo":       "Tokyo, Japan",
	"jp:osaka":       "Osaka, Japan",
	"kr:seoul":       "Seoul, South Korea",
}

func cityLocation(country, city string) string {
	if s, ok := cityLocations[country+":"+city]; ok {
		return s
	}
	return city + ", " + country
}
