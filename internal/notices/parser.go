package notices

import (
	"encoding/base64"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrParse is returned when a fetched document matches none of the known
// selectors, which usually means the feed's markup changed.
var ErrParse = errors.New("notice document matched no known selectors")

// All feed selectors live here so a markup change is a one-file fix.
const (
	selEmergencyBanner = "#block-siteden-surface-sitewidealert .bsoalert--error"
	selArticle         = "article.node--type-sf-article"
	selArticleAnchor   = ".article__title a"
	selArticleTitle    = ".article__title a .field--name-title"
	selArticleTime     = ".article__meta time"
	selCategoryTerm    = ".category-brand__term"
	selArticleSummary  = ".article__summary"
)

const (
	emergencyBannerID = "emergency-banner"
	maxTitleLen       = 25
)

// ParseDocument extracts every alert from a notice feed page: the
// site-wide emergency banner first (when present), then one alert per
// article, classified but not yet filtered by recency. Article links are
// resolved against baseURL; now stamps the banner alert.
func ParseDocument(r io.Reader, baseURL string, now time.Time) ([]Alert, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var alerts []Alert

	banner := strings.TrimSpace(doc.Find(selEmergencyBanner).Text())
	if banner != "" {
		alerts = append(alerts, Alert{
			ID:         emergencyBannerID,
			Title:      banner,
			Date:       now.UTC().Format(time.RFC3339),
			Link:       baseURL,
			Type:       TypeEmergency,
			Categories: []string{"Emergency"},
			Summary:    banner,
		})
	}

	articles := doc.Find(selArticle)
	if banner == "" && articles.Length() == 0 {
		return nil, ErrParse
	}

	articles.Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(selArticleTitle).Text())

		link := baseURL
		if href, ok := s.Find(selArticleAnchor).Attr("href"); ok {
			if ref, err := url.Parse(href); err == nil {
				link = base.ResolveReference(ref).String()
			}
		}

		timeEl := s.Find(selArticleTime)
		date, ok := timeEl.Attr("datetime")
		if !ok {
			date = strings.TrimSpace(timeEl.Text())
		}

		var categories []string
		s.Find(selCategoryTerm).Each(func(_ int, term *goquery.Selection) {
			categories = append(categories, strings.TrimSpace(term.Text()))
		})

		summary := strings.TrimSpace(s.Find(selArticleSummary).Text())

		alerts = append(alerts, Alert{
			ID:         base64.StdEncoding.EncodeToString([]byte(link)),
			Title:      truncateTitle(title),
			Date:       date,
			Link:       link,
			Type:       classify(title, summary, categories),
			Categories: categories,
			Summary:    summary,
		})
	})

	return alerts, nil
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen]) + "..."
}
