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

var blogIDPattern = regexp.MustCompile(`blog\.naver\.com/([A-Za-z0-9_-]+)`)

// BlogScraper tracks blog rankings in the Naver blog search tab. The matched
// entity is the blog itself (author name or blog id), not an individual post.
type BlogScraper struct {
	*baseScraper
}

func NewBlogScraper(pool interfaces.SessionPool, logger arbor.ILogger, config *common.Config) *BlogScraper {
	return &BlogScraper{baseScraper: newBaseScraper(pool, logger, config)}
}

func (b *BlogScraper) ServiceType() models.ServiceType {
	return models.ServiceBlog
}

// TrackRanking looks up one keyword on the blog search tab and classifies the
// rendered posts against the target blog.
func (b *BlogScraper) TrackRanking(ctx context.Context, keyword string, target models.Target) (*models.RankResult, error) {
	pageURL := fmt.Sprintf("https://search.naver.com/search.naver?ssc=tab.blog.all&sm=tab_jum&query=%s", url.QueryEscape(keyword))
	waitSelectors := []string{
		"ul.lst_view",
		"div.api_subject_bx",
	}
	return b.track(ctx, keyword, target, pageURL, waitSelectors, parseBlogItems)
}

// parseBlogItems extracts blog posts from a rendered blog-tab document in
// display order. Name is the blog author, ID the blog id from the post link.
func parseBlogItems(html string) []models.ResultItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []models.ResultItem
	doc.Find("ul.lst_view > li.bx, div.api_subject_bx li.bx").Each(func(_ int, sel *goquery.Selection) {
		titleLink := sel.Find("a.title_link, .title_area a").First()
		title := strings.TrimSpace(titleLink.Text())
		href, _ := titleLink.Attr("href")

		name := firstText(sel, ".user_box .name", "a.name", ".user_info a")
		if name == "" && title == "" {
			return
		}

		id := ""
		if m := blogIDPattern.FindStringSubmatch(href); m != nil {
			id = m[1]
		}

		items = append(items, models.ResultItem{
			Name:  name,
			ID:    id,
			URL:   href,
			Title: title,
			IsAd:  isBlogAd(sel),
		})
	})

	return items
}

func isBlogAd(sel *goquery.Selection) bool {
	if sel.HasClass("type_ad") || sel.HasClass("splink_ad") {
		return true
	}
	if sel.Find(".link_ad, .ad_label, .spview_ad").Length() > 0 {
		return true
	}
	marked := false
	sel.Find("span, em").EachWithBreak(func(_ int, badge *goquery.Selection) bool {
		if strings.TrimSpace(badge.Text()) == "광고" {
			marked = true
			return false
		}
		return true
	})
	return marked
}
