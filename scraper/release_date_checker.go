// scraper/release_date_checker.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/co2scope/models"
)

// Matches "Last Updated: 12/16/2022" and "Last Updated December 16, 2022".
var lastUpdatedRegex = regexp.MustCompile(`Last\s+Updated:?\s+(\d{1,2}/\d{1,2}/\d{4}|[A-Z][a-z]+\s+\d{1,2},\s+\d{4})`)

var releaseDateLayouts = []string{"01/02/2006", "1/2/2006", "January 2, 2006"}

// parseReleaseDateString extracts the release date from a block of catalog text.
func parseReleaseDateString(textToSearch string) (released time.Time, rawMatch string, err error) {
	matches := lastUpdatedRegex.FindStringSubmatch(textToSearch)
	if len(matches) < 2 {
		err = fmt.Errorf("could not find 'Last Updated' date in provided text block")
		return
	}
	rawMatch = matches[0]
	for _, layout := range releaseDateLayouts {
		released, err = time.Parse(layout, matches[1])
		if err == nil {
			return
		}
	}
	err = fmt.Errorf("failed to parse release date '%s': %w", matches[1], err)
	return
}

// ParseReleaseInfo finds the release date inside containerSelector of an HTML document.
func ParseReleaseInfo(sourceName string, body io.Reader, containerSelector string) (*models.ReleaseInfo, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if containerSelector == "" {
		containerSelector = "body"
	}

	var foundDateText string
	doc.Find(containerSelector).Find("li, p, span, div").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if strings.Contains(text, "Last Updated") && lastUpdatedRegex.MatchString(text) {
			foundDateText = text
			return false
		}
		return true
	})
	if foundDateText == "" {
		return nil, fmt.Errorf("no 'Last Updated' element within container '%s'. QC: Verify container selector and page structure", containerSelector)
	}

	released, raw, err := parseReleaseDateString(foundDateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse release date for %s from text '%s': %w", sourceName, foundDateText, err)
	}
	return &models.ReleaseInfo{
		SourceName:    sourceName,
		ReleaseDate:   released,
		RawDateString: raw,
		LastChecked:   time.Now().UTC(),
	}, nil
}

// GetReleaseInfo scrapes pageURL for the dataset's release date.
func GetReleaseInfo(ctx context.Context, sourceName, pageURL, containerSelector string, timeout time.Duration) (*models.ReleaseInfo, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("catalog page URL: %w", ErrNotConfigured)
	}
	log.Printf("Scraper: Checking release date for %s from %s (container: '%s')\n", sourceName, pageURL, containerSelector)

	client := http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	info, err := ParseReleaseInfo(sourceName, res.Body, containerSelector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}
	log.Printf("Scraper: Found release date for %s: %s (Raw: '%s')\n",
		sourceName, info.ReleaseDate.Format("2006-01-02"), info.RawDateString)
	return info, nil
}
