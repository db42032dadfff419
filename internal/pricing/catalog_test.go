package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func TestCatalog_Price_LongestPrefixWins(t *testing.T) {
	c := New([]Entry{
		{ModelIDPattern: "claude-3", InputPerMTok: 1, OutputPerMTok: 2},
		{ModelIDPattern: "claude-3-5-sonnet", InputPerMTok: 3, OutputPerMTok: 15},
	})

	got := c.Price("claude-3-5-sonnet-20241022", model.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000})
	assert.InDelta(t, 18.0, got, 0.0001)
}

func TestCatalog_Price_TieBrokenLexicographically(t *testing.T) {
	c := New([]Entry{
		{ModelIDPattern: "gpt-4b", InputPerMTok: 10},
		{ModelIDPattern: "gpt-4a", InputPerMTok: 20},
	})

	// Neither pattern is a prefix of the other's length-equal sibling, so
	// lookup order after sort is "gpt-4a" then "gpt-4b" (same length, lower
	// lexicographically first). Only one matches a given model id.
	got := c.Price("gpt-4a-preview", model.Usage{InputTokens: 1_000_000})
	assert.InDelta(t, 20.0, got, 0.0001)
}

func TestCatalog_Price_UnknownModelReturnsZero(t *testing.T) {
	c := New([]Entry{{ModelIDPattern: "claude-3", InputPerMTok: 1}})

	got := c.Price("some-unlisted-model", model.Usage{InputTokens: 1000})
	assert.Equal(t, 0.0, got)
}

func TestCatalog_Price_AllTokenKinds(t *testing.T) {
	c := New([]Entry{
		{
			ModelIDPattern:    "m",
			InputPerMTok:      1,
			OutputPerMTok:     2,
			CacheReadPerMTok:  3,
			CacheWritePerMTok: 4,
		},
	})

	u := model.Usage{
		InputTokens:      1_000_000,
		OutputTokens:     1_000_000,
		CacheReadTokens:  1_000_000,
		CacheWriteTokens: 1_000_000,
	}
	assert.InDelta(t, 10.0, c.Price("m-1", u), 0.0001)
}

func TestCatalog_Merge_DoesNotMutateOriginal(t *testing.T) {
	base := New([]Entry{{ModelIDPattern: "claude-3", InputPerMTok: 1}})
	merged := base.Merge([]Entry{{ModelIDPattern: "claude-3-opus", InputPerMTok: 99}})

	require.Len(t, base.Entries(), 1)
	require.Len(t, merged.Entries(), 2)

	assert.InDelta(t, 99_000_000.0/1_000_000, merged.Price("claude-3-opus-x", model.Usage{InputTokens: 1_000_000}), 0.0001)
	assert.InDelta(t, 1.0, base.Price("claude-3-opus-x", model.Usage{InputTokens: 1_000_000}), 0.0001)
}

func TestSortEntries_LongestFirst(t *testing.T) {
	sorted := sortEntries([]Entry{
		{ModelIDPattern: "a"},
		{ModelIDPattern: "abc"},
		{ModelIDPattern: "ab"},
	})

	require.Len(t, sorted, 3)
	assert.Equal(t, "abc", sorted[0].ModelIDPattern)
	assert.Equal(t, "ab", sorted[1].ModelIDPattern)
	assert.Equal(t, "a", sorted[2].ModelIDPattern)
}

func TestCatalog_Entries_ReturnsCopy(t *testing.T) {
	c := New([]Entry{{ModelIDPattern: "claude-3", InputPerMTok: 1}})
	entries := c.Entries()
	entries[0].InputPerMTok = 999

	assert.InDelta(t, 1.0, c.Price("claude-3-x", model.Usage{InputTokens: 1_000_000}), 0.0001)
}

func TestNewDefaultCatalog_CoversModelFamilies(t *testing.T) {
	c := NewDefaultCatalog()

	cases := []string{
		"claude-opus-4-20250514",
		"claude-sonnet-4-20250514",
		"claude-3-5-sonnet-20241022",
		"gpt-4o-mini",
		"gpt-5",
		"o3-mini",
		"gemini-2.5-pro",
		"kimi-k2-0711-preview",
	}
	for _, modelID := range cases {
		_, ok := c.lookup(modelID)
		assert.True(t, ok, "expected a pricing entry for %q", modelID)
	}
}

func TestNewDefaultCatalog_UnknownModelWarnsOnce(t *testing.T) {
	c := NewDefaultCatalog()

	got := c.Price("some-future-model-nobody-has-heard-of", model.Usage{InputTokens: 1000})
	assert.Equal(t, 0.0, got)

	// Calling twice must not panic or duplicate the warned set; the only
	// observable behavior from here is that Price keeps returning zero.
	got = c.Price("some-future-model-nobody-has-heard-of", model.Usage{InputTokens: 1000})
	assert.Equal(t, 0.0, got)
}
