package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

const placeListHTML = `
<html><body>
<ul>
  <li data-laim-exp-id="undefined*e">
    <a href="https://m.place.naver.com/place/111222333/home"><span class="YwYLL">광고치과 강남점</span></a>
    <span class="gU6bV">광고</span>
  </li>
  <li data-laim-exp-id="undefined*s">
    <a href="https://m.place.naver.com/place/1045278956/home"><span class="YwYLL">미소치과의원</span></a>
  </li>
  <li data-laim-exp-id="undefined*s" data-id="777888999">
    <a href="https://m.place.naver.com/restaurant/777888999/home"><span class="TYaxT">강남 바른치과</span></a>
  </li>
  <li data-laim-exp-id="undefined*s">
    <span class="YwYLL"></span>
  </li>
</ul>
</body></html>`

func TestParsePlaceItems(t *testing.T) {
	items := parsePlaceItems(placeListHTML)

	require.Len(t, items, 3, "items without a name must be skipped")

	assert.Equal(t, "광고치과 강남점", items[0].Name)
	assert.True(t, items[0].IsAd, "impression id ending in *e marks a sponsored slot")
	assert.Equal(t, "111222333", items[0].ID)

	assert.Equal(t, "미소치과의원", items[1].Name)
	assert.False(t, items[1].IsAd)
	assert.Equal(t, "1045278956", items[1].ID, "place id must come from the link path")

	assert.Equal(t, "강남 바른치과", items[2].Name)
	assert.Equal(t, "777888999", items[2].ID, "data-id attribute wins over the link path")
}

func TestParsePlaceItems_AdBadgeFallback(t *testing.T) {
	html := `<html><body><ul>
	  <li class="UEzoS"><a href="/place/42"><span class="YwYLL">배너업체</span></a><span>광고</span></li>
	  <li class="UEzoS"><a href="/place/43"><span class="YwYLL">일반업체</span></a></li>
	</ul></body></html>`

	items := parsePlaceItems(html)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsAd, "visible 광고 label must mark the item as ad")
	assert.False(t, items[1].IsAd)
}

func TestParsePlaceItems_EmptyDocument(t *testing.T) {
	assert.Empty(t, parsePlaceItems("<html><body></body></html>"))
}

func TestParsePlaceItems_FeedsExtractor(t *testing.T) {
	items := parsePlaceItems(placeListHTML)

	result := Extract(items, models.Target{ID: "1045278956", Name: "미소치과"}, 10)
	require.NotNil(t, result.OrganicRank)
	assert.Equal(t, 1, *result.OrganicRank, "the leading ad must not consume an organic position")
	assert.Nil(t, result.AdRank)
	assert.True(t, result.Found)
}
