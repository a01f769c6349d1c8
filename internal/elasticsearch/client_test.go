package elasticsearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nativeiq/market-radar/internal/news"
)

func TestSearchBodyFiltersMarket(t *testing.T) {
	body := SearchBody(news.BuildQuery("food", "IN"))

	require.Equal(t, news.DefaultLimit, body["size"])

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	require.Equal(t, []map[string]any{
		{"term": map[string]any{"industry.keyword": "food"}},
		{"term": map[string]any{"location.keyword": "IN"}},
	}, boolQuery["filter"])

	should := boolQuery["should"].([]map[string]any)
	require.Len(t, should, 1)
	match := should[0]["multi_match"].(map[string]any)
	require.Equal(t, "food IN seasonal trends festival demand news", match["query"])
}

func TestSearchBodyMatchAll(t *testing.T) {
	body := SearchBody(news.Query{})

	require.Equal(t, news.DefaultLimit, body["size"])
	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	require.Contains(t, boolQuery, "must")
	require.NotContains(t, boolQuery, "filter")
}

func TestDecodeHits(t *testing.T) {
	raw := `{"hits":{"hits":[
		{"_source":{"id":"a","title":"Pumpkin shortage","snippet":"farms","location":"US","keywords":["pumpkin","shortage"]}},
		{"_source":{"id":"b","title":"Taco week"}}
	]}}`

	items, err := decodeHits(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Pumpkin shortage", items[0].Title)
	require.Equal(t, []string{"pumpkin", "shortage"}, items[0].Keywords)
	require.Equal(t, "b", items[1].ID)

	_, err = decodeHits(strings.NewReader("{"))
	require.Error(t, err)
}
