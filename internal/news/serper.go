package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nativeiq/market-radar/internal/models"
)

// SerperNewsURL is the Serper news search endpoint.
const SerperNewsURL = "https://google.serper.dev/news"

// SerperClient queries the Serper news search API.
type SerperClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewSerperClient builds a client. An empty endpoint selects SerperNewsURL.
func NewSerperClient(apiKey, endpoint string, timeout time.Duration) *SerperClient {
	if endpoint == "" {
		endpoint = SerperNewsURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SerperClient{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type serperRequest struct {
	Q  string `json:"q"`
	GL string `json:"gl"`
	HL string `json:"hl"`
}

type serperResponse struct {
	News []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Source  string `json:"source"`
	} `json:"news"`
}

func (c *SerperClient) Name() string {
	return "serper"
}

// Search posts q.Text to Serper. Transport failures, non-2xx statuses and
// undecodable bodies are all returned as errors.
func (c *SerperClient) Search(ctx context.Context, q Query) ([]models.NewsItem, error) {
	payload, err := json.Marshal(serperRequest{Q: q.Text, GL: "us", HL: "en"})
	if err != nil {
		return nil, fmt.Errorf("marshal serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("serper failed: %s: %s", res.Status, strings.TrimSpace(string(body)))
	}

	var parsed serperResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}

	items := make([]models.NewsItem, 0, len(parsed.News))
	for _, n := range parsed.News {
		items = append(items, models.NewsItem{
			Title:    n.Title,
			Snippet:  n.Snippet,
			Industry: q.Industry,
			Location: q.Location,
			Source:   n.Source,
		})
	}
	return items, nil
}
