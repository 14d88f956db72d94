package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

var placeIDPattern = regexp.MustCompile(`/(?:place|restaurant|hospital|hairshop|accommodation)/(\d+)`)

// PlaceScraper tracks business rankings in Naver mobile place search results.
type PlaceScraper struct {
	*baseScraper
}

func NewPlaceScraper(pool interfaces.SessionPool, logger arbor.ILogger, config *common.Config) *PlaceScraper {
	return &PlaceScraper{baseScraper: newBaseScraper(pool, logger, config)}
}

func (p *PlaceScraper) ServiceType() models.ServiceType {
	return models.ServiceSmartPlace
}

// TrackRanking looks up one keyword on the mobile place list and classifies
// the rendered result items against the target business.
func (p *PlaceScraper) TrackRanking(ctx context.Context, keyword string, target models.Target) (*models.RankResult, error) {
	pageURL := fmt.Sprintf("https://m.place.naver.com/place/list?query=%s", url.QueryEscape(keyword))
	waitSelectors := []string{
		"li[data-laim-exp-id]",
		"li.UEzoS",
	}
	return p.track(ctx, keyword, target, pageURL, waitSelectors, parsePlaceItems)
}

// parsePlaceItems extracts place entries from a rendered place-list document
// in display order. Ad detection is structural first (the impression tracking
// id ends in "*e" for sponsored slots, or an ad badge element is present) with
// the visible "광고" label as fallback.
func parsePlaceItems(html string) []models.ResultItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []models.ResultItem
	doc.Find("li[data-laim-exp-id], li.UEzoS").Each(func(_ int, sel *goquery.Selection) {
		name := firstText(sel, "span.YwYLL", "span.TYaxT", "span.place_bluelink", "a.place_bluelink span")
		if name == "" {
			return
		}

		href, _ := sel.Find("a[href]").First().Attr("href")

		id, _ := sel.Attr("data-id")
		if id == "" {
			if m := placeIDPattern.FindStringSubmatch(href); m != nil {
				id = m[1]
			}
		}

		items = append(items, models.ResultItem{
			Name: strings.TrimSpace(name),
			ID:   id,
			URL:  href,
			IsAd: isPlaceAd(sel),
		})
	})

	return items
}

func isPlaceAd(sel *goquery.Selection) bool {
	if expID, ok := sel.Attr("data-laim-exp-id"); ok && strings.HasSuffix(expID, "*e") {
		return true
	}
	if sel.Find(".link_ad, .ad_label, span.gU6bV").Length() > 0 {
		return true
	}
	// Visible label fallback
	marked := false
	sel.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if strings.TrimSpace(span.Text()) == "광고" {
			marked = true
			return false
		}
		return true
	})
	return marked
}

// firstText returns the trimmed text of the first selector that yields any
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(sel.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
