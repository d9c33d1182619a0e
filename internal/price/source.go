package price

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/pkg/httpretry"
)

// Source is a pluggable cannery price feed. Fetch retrieves the raw page
// content; Parse extracts a per-pound price per fish type from it. Keeping
// the two separate isolates a cannery layout change to one adapter and lets
// tests exercise parsing without a network.
type Source interface {
	// Name returns the cannery name attached to quotes from this source.
	Name() string

	// Fetch retrieves the raw page content.
	Fetch(ctx context.Context) (string, error)

	// Parse extracts fish type → price-per-lb from the raw content.
	Parse(content string) (map[string]float64, error)
}

// HTMLSource scrapes a cannery website for current fish prices. It knows the
// two layouts canneries around here actually publish: a table with class
// "prices" and per-fish "fish-price" divs. If neither matches it falls back
// to a keyword scan over the page text.
type HTMLSource struct {
	name   string
	url    string
	client httpretry.HTTPDoer
}

// NewHTMLSource creates a scraping source for the given cannery page.
// If client is nil a retrying HTTP client with sensible defaults is used.
func NewHTMLSource(name, url string, client httpretry.HTTPDoer) *HTMLSource {
	if client == nil {
		client = httpretry.NewRetryClient(nil, 2)
	}
	return &HTMLSource{name: name, url: url, client: client}
}

// Name returns the cannery name.
func (s *HTMLSource) Name() string { return s.name }

// Fetch downloads the cannery page.
func (s *HTMLSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetching %s: status %d", s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.url, err)
	}
	return string(body), nil
}

// Parse extracts per-pound prices from the page content.
func (s *HTMLSource) Parse(content string) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	prices := make(map[string]float64)

	// Layout 1: <table class="prices"> with fish type and price columns.
	doc.Find("table.prices tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		fish := strings.TrimSpace(cols.Eq(0).Text())
		if p, ok := extractPrice(cols.Eq(1).Text()); ok && fish != "" {
			prices[fish] = p
		}
	})

	// Layout 2: <div class="fish-price"> with name and price spans.
	doc.Find("div.fish-price").Each(func(_ int, div *goquery.Selection) {
		fish := strings.TrimSpace(div.Find("span.fish-name").Text())
		if p, ok := extractPrice(div.Find("span.price").Text()); ok && fish != "" {
			prices[fish] = p
		}
	})

	// Fallback: scan page text for known fish names with a nearby price.
	if len(prices) == 0 {
		lines := strings.Split(doc.Text(), "\n")
		for i, line := range lines {
			lower := strings.ToLower(line)
			for _, fish := range domain.KnownFishTypes {
				if fish == "Other" || !strings.Contains(lower, strings.ToLower(fish)) {
					continue
				}
				// Price may be on this line or within the next two.
				for j := i; j < i+3 && j < len(lines); j++ {
					if p, ok := extractPrice(lines[j]); ok {
						prices[fish] = p
						break
					}
				}
			}
		}
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("no prices found in page")
	}
	return prices, nil
}

var priceFigure = regexp.MustCompile(`\$?\s*(\d+(?:\.\d{1,2})?)\s*(?:/\s*lb)?`)

// extractPrice pulls a dollar amount out of text like "$4.20/lb" or "4.20".
func extractPrice(text string) (float64, bool) {
	m := priceFigure.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return domain.Round2(v), true
}
