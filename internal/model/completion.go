package model

import "slices"

// Completions maps an item id to the days (YYYY-MM-DD) it was marked done,
// in the order they were recorded. A day appears at most once per item.
type Completions map[string][]string

// Has reports whether itemID was completed on day.
func (c Completions) Has(itemID, day string) bool {
	return slices.Contains(c[itemID], day)
}

// Last returns the most recent completion day for itemID, or "" if none.
// Day strings sort chronologically, so the lexicographic maximum is the latest.
func (c Completions) Last(itemID string) string {
	days := c[itemID]
	if len(days) == 0 {
		return ""
	}
	return slices.Max(days)
}

func (c Completions) Clone() Completions {
	if c == nil {
		return nil
	}
	out := make(Completions, len(c))
	for id, days := range c {
		out[id] = slices.Clone(days)
	}
	return out
}

// Unique returns a copy keeping the first occurrence of each day per item.
func (c Completions) Unique() Completions {
	if c == nil {
		return nil
	}
	out := make(Completions, len(c))
	for id, days := range c {
		kept := make([]string, 0, len(days))
		for _, day := range days {
			if !slices.Contains(kept, day) {
				kept = append(kept, day)
			}
		}
		out[id] = kept
	}
	return out
}
