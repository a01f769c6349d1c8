package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/nativeiq/market-radar/internal/models"
	"github.com/nativeiq/market-radar/internal/news"
)

// Client stores archived headlines and serves them back as a news source.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// New instantiates the Elasticsearch client.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// IndexNews writes an archived headline. Re-indexing the same ID overwrites it.
func (c *Client) IndexNews(ctx context.Context, item models.NewsItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal news item: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: item.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index news item: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index news item failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) Name() string {
	return "elasticsearch"
}

// Search returns the newest archived headlines for the query's market.
func (c *Client) Search(ctx context.Context, q news.Query) ([]models.NewsItem, error) {
	payload, err := json.Marshal(SearchBody(q))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	return decodeHits(res.Body)
}

// SearchBody builds the bool query used by Search: full-text match on the
// query text, filtered to the market when industry or location are set.
func SearchBody(q news.Query) map[string]any {
	size := q.Limit
	if size <= 0 {
		size = news.DefaultLimit
	}

	filters := make([]map[string]any, 0, 2)
	if q.Industry != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"industry.keyword": q.Industry}})
	}
	if q.Location != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"location.keyword": q.Location}})
	}

	boolQuery := map[string]any{}
	if q.Text != "" {
		boolQuery["should"] = []map[string]any{
			{"multi_match": map[string]any{
				"query":  q.Text,
				"fields": []string{"title^2", "snippet", "keywords"},
			}},
		}
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []map[string]any{{"match_all": map[string]any{}}}
	}

	return map[string]any{
		"size":  size,
		"query": map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
		},
	}
}

func decodeHits(r io.Reader) ([]models.NewsItem, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.NewsItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.NewsItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}
	return items, nil
}

// DeleteOlderThan removes headlines archived before now-maxAge using batched
// delete-by-query, looping until a batch deletes fewer than batchSize documents.
func (c *Client) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	payload, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{"lte": cutoff},
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal delete body: %w", err)
	}

	var total int64
	for {
		deleted, err := c.deleteBatch(ctx, payload, batchSize)
		total += deleted
		if err != nil {
			return total, err
		}
		if deleted < int64(batchSize) {
			return total, nil
		}
	}
}

func (c *Client) deleteBatch(ctx context.Context, payload []byte, batchSize int) (int64, error) {
	res, err := c.es.DeleteByQuery(
		[]string{c.index},
		bytes.NewReader(payload),
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithWaitForCompletion(true),
		c.es.DeleteByQuery.WithConflicts("proceed"),
		c.es.DeleteByQuery.WithScrollSize(batchSize),
		c.es.DeleteByQuery.WithMaxDocs(batchSize),
	)
	if err != nil {
		return 0, fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("delete by query failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode delete response: %w", err)
	}
	c.log.Debug("retention batch", slog.Int64("deleted", parsed.Deleted))
	return parsed.Deleted, nil
}

// Health reports cluster health as an error when the cluster is unreachable.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
