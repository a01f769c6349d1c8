package processing

import (
	"sort"
	"strings"

	"github.com/nativeiq/market-radar/internal/models"
)

// TopKeywordLimit is how many trending keywords the assembler looks at.
const TopKeywordLimit = 5

// SignalWords hint that a headline is about demand shifts rather than a specific product.
var SignalWords = []string{
	"festival", "holiday", "trend", "demand", "shortage", "price",
	"seasonal", "recipe", "menu", "launch", "limited",
}

// FoodTerms are candidate entities worth featuring on a menu.
var FoodTerms = []string{
	"pumpkin", "gingerbread", "bbq", "grill", "turkey", "sweets", "laddu",
	"vegan", "gluten-free", "spicy", "seafood", "ramen", "taco",
}

// Vocabulary is the full ordered trigger list. Order matters: it breaks ties in Top.
var Vocabulary = append(append([]string{}, SignalWords...), FoodTerms...)

// KeywordCount is a single tally entry.
type KeywordCount struct {
	Keyword string
	Count   int
}

// Tally holds keyword counts in vocabulary order. Keywords that never matched are absent.
type Tally []KeywordCount

// CountKeywords counts, for every vocabulary term, how many news items mention it.
// A term counts at most once per item.
func CountKeywords(items []models.NewsItem, vocab []string) Tally {
	if len(items) == 0 || len(vocab) == 0 {
		return nil
	}

	counts := make([]int, len(vocab))
	for _, item := range items {
		text := itemText(item)
		for i, kw := range vocab {
			if containsKeyword(text, kw) {
				counts[i]++
			}
		}
	}

	var tally Tally
	for i, kw := range vocab {
		if counts[i] > 0 {
			tally = append(tally, KeywordCount{Keyword: kw, Count: counts[i]})
		}
	}
	return tally
}

// Top returns up to n keywords by descending count. Equal counts keep vocabulary order.
func (t Tally) Top(n int) []string {
	if len(t) == 0 || n <= 0 {
		return nil
	}

	sorted := make(Tally, len(t))
	copy(sorted, t)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, 0, n)
	for _, kc := range sorted[:n] {
		out = append(out, kc.Keyword)
	}
	return out
}

// TrendingKeywords is CountKeywords over the full vocabulary followed by Top(TopKeywordLimit).
func TrendingKeywords(items []models.NewsItem) []string {
	return CountKeywords(items, Vocabulary).Top(TopKeywordLimit)
}

func itemText(item models.NewsItem) string {
	return strings.ToLower(item.Title + " " + item.Snippet)
}

// containsKeyword is plain substring containment, so "bbqfest" matches "bbq".
func containsKeyword(text, keyword string) bool {
	return strings.Contains(text, keyword)
}
