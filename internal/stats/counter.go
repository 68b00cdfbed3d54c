package stats

import "sort"

// Counter tallies occurrences of string keys.
type Counter map[string]int

// Add increments the count for key. Empty keys are ignored.
func (c Counter) Add(key string) {
	if key == "" {
		return
	}
	c[key]++
}

// Pair is a counted key, used for ranked output.
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// MostCommon returns the n highest-count pairs, ordered by descending count.
// Ties are broken by ascending key so output is deterministic. n <= 0 returns
// all pairs.
func (c Counter) MostCommon(n int) []Pair {
	pairs := make([]Pair, 0, len(c))
	for k, v := range c {
		pairs = append(pairs, Pair{Key: k, Count: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Key < pairs[j].Key
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
