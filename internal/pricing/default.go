package pricing

// NewDefaultCatalog builds the built-in pricing table covering the Claude
// 3/4, GPT-4/4o/5, o3/o4, Gemini, and Kimi model families. Rates are USD per
// million tokens. Cache-write is priced at roughly 1.25x the input rate in
// every entry; cache-read at roughly 0.1x for the Claude, GPT-5 and
// GPT-4/4-turbo entries, 0.25x for o-series, Gemini and Kimi, and 0.5x for
// GPT-4o, per each entry below (spec §4.1) — these are
// configuration data, not core semantics, and may drift from a vendor's
// current price sheet.
func NewDefaultCatalog() *Catalog {
	return New([]Entry{
		// Claude 4 family
		{ModelIDPattern: "claude-opus-4", InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheReadPerMTok: 1.50, CacheWritePerMTok: 18.75},
		{ModelIDPattern: "claude-sonnet-4", InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheReadPerMTok: 0.30, CacheWritePerMTok: 3.75},
		{ModelIDPattern: "claude-haiku-4", InputPerMTok: 1.00, OutputPerMTok: 5.00, CacheReadPerMTok: 0.10, CacheWritePerMTok: 1.25},

		// Claude 3 family
		{ModelIDPattern: "claude-3-opus", InputPerMTok: 15.00, OutputPerMTok: 75.00, CacheReadPerMTok: 1.50, CacheWritePerMTok: 18.75},
		{ModelIDPattern: "claude-3-5-sonnet", InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheReadPerMTok: 0.30, CacheWritePerMTok: 3.75},
		{ModelIDPattern: "claude-3-7-sonnet", InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheReadPerMTok: 0.30, CacheWritePerMTok: 3.75},
		{ModelIDPattern: "claude-3-5-haiku", InputPerMTok: 0.80, OutputPerMTok: 4.00, CacheReadPerMTok: 0.08, CacheWritePerMTok: 1.00},
		{ModelIDPattern: "claude-3-haiku", InputPerMTok: 0.25, OutputPerMTok: 1.25, CacheReadPerMTok: 0.03, CacheWritePerMTok: 0.30},
		{ModelIDPattern: "claude-3-sonnet", InputPerMTok: 3.00, OutputPerMTok: 15.00, CacheReadPerMTok: 0.30, CacheWritePerMTok: 3.75},

		// GPT-5 family
		{ModelIDPattern: "gpt-5-mini", InputPerMTok: 0.25, OutputPerMTok: 2.00, CacheReadPerMTok: 0.025, CacheWritePerMTok: 0.3125},
		{ModelIDPattern: "gpt-5-nano", InputPerMTok: 0.05, OutputPerMTok: 0.40, CacheReadPerMTok: 0.005, CacheWritePerMTok: 0.0625},
		{ModelIDPattern: "gpt-5", InputPerMTok: 1.25, OutputPerMTok: 10.00, CacheReadPerMTok: 0.125, CacheWritePerMTok: 1.5625},

		// GPT-4o / GPT-4 family
		{ModelIDPattern: "gpt-4o-mini", InputPerMTok: 0.15, OutputPerMTok: 0.60, CacheReadPerMTok: 0.075, CacheWritePerMTok: 0.1875},
		{ModelIDPattern: "gpt-4o", InputPerMTok: 2.50, OutputPerMTok: 10.00, CacheReadPerMTok: 1.25, CacheWritePerMTok: 3.125},
		{ModelIDPattern: "gpt-4-turbo", InputPerMTok: 10.00, OutputPerMTok: 30.00, CacheReadPerMTok: 1.00, CacheWritePerMTok: 12.50},
		{ModelIDPattern: "gpt-4", InputPerMTok: 30.00, OutputPerMTok: 60.00, CacheReadPerMTok: 3.00, CacheWritePerMTok: 37.50},

		// o-series reasoning models
		{ModelIDPattern: "o4-mini", InputPerMTok: 1.10, OutputPerMTok: 4.40, CacheReadPerMTok: 0.275, CacheWritePerMTok: 1.375},
		{ModelIDPattern: "o3-mini", InputPerMTok: 1.10, OutputPerMTok: 4.40, CacheReadPerMTok: 0.275, CacheWritePerMTok: 1.375},
		{ModelIDPattern: "o3", InputPerMTok: 2.00, OutputPerMTok: 8.00, CacheReadPerMTok: 0.50, CacheWritePerMTok: 2.50},

		// Gemini family
		{ModelIDPattern: "gemini-2.5-pro", InputPerMTok: 1.25, OutputPerMTok: 10.00, CacheReadPerMTok: 0.3125, CacheWritePerMTok: 1.5625},
		{ModelIDPattern: "gemini-2.5-flash", InputPerMTok: 0.30, OutputPerMTok: 2.50, CacheReadPerMTok: 0.075, CacheWritePerMTok: 0.375},
		{ModelIDPattern: "gemini-2.0-flash", InputPerMTok: 0.10, OutputPerMTok: 0.40, CacheReadPerMTok: 0.025, CacheWritePerMTok: 0.125},
		{ModelIDPattern: "gemini-1.5-pro", InputPerMTok: 1.25, OutputPerMTok: 5.00, CacheReadPerMTok: 0.3125, CacheWritePerMTok: 1.5625},

		// Kimi family
		{ModelIDPattern: "kimi-k2", InputPerMTok: 0.60, OutputPerMTok: 2.50, CacheReadPerMTok: 0.15, CacheWritePerMTok: 0.75},
		{ModelIDPattern: "moonshot-v1", InputPerMTok: 0.60, OutputPerMTok: 2.50, CacheReadPerMTok: 0.15, CacheWritePerMTok: 0.75},
	})
}
