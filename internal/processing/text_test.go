package processing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nativeiq/market-radar/internal/processing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "entities", input: "Fish &amp; chips", want: "Fish & chips"},
		{name: "collapse whitespace", input: "  foo\n\nbar\t baz ", want: "foo bar baz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.NormalizeText(tt.input))
		})
	}
}

func TestBuildDocumentID(t *testing.T) {
	id1 := processing.BuildDocumentID("Title", "snippet", "US")
	id2 := processing.BuildDocumentID("title", "Snippet", "US")
	require.NotEmpty(t, id1)
	require.Equal(t, id1, id2)
	require.NotEqual(t, id1, processing.BuildDocumentID("title", "snippet", "UK"))
}
