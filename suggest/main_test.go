package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nativeiq/market-radar/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func writeNews(t *testing.T, items string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.json")
	require.NoError(t, os.WriteFile(path, []byte(items), 0o600))
	return path
}

func TestSuggestFromNewsFile(t *testing.T) {
	path := writeNews(t, `[{"title":"Diwali sweets festival draws record demand","snippet":""}]`)

	out, err := run(t, "--industry", "food", "--location", "in", "--month", "10", "--news-file", path)
	require.NoError(t, err)

	var res models.SuggestionsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 1, res.NewsCount)
	require.Equal(t, "seasonal-1", res.Suggestions[0].ID)
	require.Equal(t, "Diwali", res.Suggestions[0].Source)
	require.Equal(t, "trend-1", res.Suggestions[1].ID)
}

func TestSuggestWithoutNews(t *testing.T) {
	out, err := run(t, "--industry", "retail", "--location", "UK", "--month", "3")
	require.NoError(t, err)

	var res models.SuggestionsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 0, res.NewsCount)
	require.Len(t, res.Suggestions, 3)
}

func TestSuggestFlagValidation(t *testing.T) {
	_, err := run(t, "--month", "13")
	require.Error(t, err)

	_, err = run(t, "--live", "--news-file", "x.json")
	require.Error(t, err)

	_, err = run(t, "--news-file", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestKeywordsCommand(t *testing.T) {
	path := writeNews(t, `[{"title":"Vegan taco launch"},{"title":"Vegan ramen"}]`)

	out, err := run(t, "keywords", "--news-file", path)
	require.NoError(t, err)

	var res struct {
		Top []string `json:"top"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, []string{"vegan", "launch", "ramen", "taco"}, res.Top)
}
