// Package tokencount provides the default token counter used for
// conversation budgeting.
package tokencount

import "strings"

// WordCounter approximates token counts by counting whitespace-
// separated words. The budget it feeds is itself approximate, so any
// consistent counter will do.
type WordCounter struct{}

// New creates a word-count token counter.
func New() WordCounter {
	return WordCounter{}
}

// Count returns the number of whitespace-separated words in text.
func (WordCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

// CountBatch counts tokens for multiple texts.
func (c WordCounter) CountBatch(texts []string) []int {
	counts := make([]int, len(texts))
	for i, t := range texts {
		counts[i] = c.Count(t)
	}
	return counts
}
