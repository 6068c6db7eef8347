package rankindex

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	top250Size = 250
	top100Size = 100
)

// Index maps chart titles to their 0-based rank. It is built once during
// bootstrap and read-only afterwards, so lookups need no locking.
type Index struct {
	top250 map[string]int
	top100 map[string]int
}

// Empty returns an index with no entries; every lookup reports false. Used as
// the fallback when chart scraping fails, so a chart outage cannot take the
// whole service down.
func Empty() *Index {
	return &Index{
		top250: map[string]int{},
		top100: map[string]int{},
	}
}

// Build fetches both chart pages and extracts their ranked titles.
func Build(ctx context.Context, client *http.Client, top250URL, top100URL string) (*Index, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	top250, err := fetchChart(ctx, client, top250URL, top250Size)
	if err != nil {
		return nil, fmt.Errorf("top 250 chart: %w", err)
	}
	top100, err := fetchChart(ctx, client, top100URL, top100Size)
	if err != nil {
		return nil, fmt.Errorf("top 100 chart: %w", err)
	}

	return &Index{top250: top250, top100: top100}, nil
}

// InTop250 reports chart membership by exact, case-sensitive title match.
func (i *Index) InTop250(title string) bool {
	_, ok := i.top250[title]
	return ok
}

// InTop100 reports chart membership by exact, case-sensitive title match.
func (i *Index) InTop100(title string) bool {
	_, ok := i.top100[title]
	return ok
}

// Rank250 returns the 0-based top-250 rank for a title.
func (i *Index) Rank250(title string) (int, bool) {
	rank, ok := i.top250[title]
	return rank, ok
}

// Rank100 returns the 0-based top-100 rank for a title.
func (i *Index) Rank100(title string) (int, bool) {
	rank, ok := i.top100[title]
	return rank, ok
}

// Sizes reports how many entries each chart mapping holds.
func (i *Index) Sizes() (top250, top100 int) {
	return len(i.top250), len(i.top100)
}

func fetchChart(ctx context.Context, client *http.Client, chartURL string, size int) (map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chartURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "mediaserver/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}

	return extractRanks(doc, size), nil
}

// extractRanks walks anchors carrying a title attribute in document order; the
// first size matches define the ranking.
func extractRanks(doc *goquery.Document, size int) map[string]int {
	ranks := make(map[string]int, size)
	doc.Find("a[title]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return true
		}
		if _, seen := ranks[title]; !seen {
			ranks[title] = len(ranks)
		}
		return len(ranks) < size
	})
	return ranks
}
