package model

// Usage holds token counts for one event, turn, or session. All fields are
// non-negative and additive under summation (spec invariant: the sum of a
// session's turn usages equals the session's aggregate usage).
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}

// Add returns the element-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:      u.InputTokens + o.InputTokens,
		OutputTokens:     u.OutputTokens + o.OutputTokens,
		CacheReadTokens:  u.CacheReadTokens + o.CacheReadTokens,
		CacheWriteTokens: u.CacheWriteTokens + o.CacheWriteTokens,
	}
}

// Total returns the sum of all four token kinds.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens + u.CacheReadTokens + u.CacheWriteTokens
}

// IsZero reports whether every token kind is zero, e.g. a Codex event with
// no usage record at all.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// SumUsage adds every element of us into a single Usage.
func SumUsage(us []Usage) Usage {
	var total Usage
	for _, u := range us {
		total = total.Add(u)
	}
	return total
}
