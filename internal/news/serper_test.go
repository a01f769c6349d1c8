package news_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nativeiq/market-radar/internal/news"
)

func TestSerperSearch(t *testing.T) {
	var (
		gotBody   map[string]string
		gotMethod string
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"news":[
			{"title":"Diwali sweets festival draws record demand","snippet":"Shops sold out","source":"Times"},
			{"title":"No snippet here"}
		]}`)
	}))
	defer srv.Close()

	client := news.NewSerperClient("test-key", srv.URL, time.Second)
	items, err := client.Search(context.Background(), news.BuildQuery("food", "IN"))
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "test-key", gotHeader.Get("X-API-KEY"))
	require.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	require.Equal(t, map[string]string{
		"q":  "food IN seasonal trends festival demand news",
		"gl": "us",
		"hl": "en",
	}, gotBody)

	require.Len(t, items, 2)
	require.Equal(t, "Diwali sweets festival draws record demand", items[0].Title)
	require.Equal(t, "Shops sold out", items[0].Snippet)
	require.Equal(t, "Times", items[0].Source)
	require.Equal(t, "IN", items[0].Location)
	require.Equal(t, "food", items[0].Industry)
	require.Empty(t, items[1].Snippet)
}

func TestSerperSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"news": [`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := news.NewSerperClient("k", srv.URL, time.Second)
			_, err := client.Search(context.Background(), news.BuildQuery("food", "US"))
			require.Error(t, err)
		})
	}
}

func TestSerperSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := news.NewSerperClient("k", url, time.Second)
	_, err := client.Search(context.Background(), news.BuildQuery("food", "US"))
	require.Error(t, err)
}
