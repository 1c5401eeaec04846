// Package textproc holds the word tokenizer shared by the offline embedder
// and the summarizer.
package textproc

import (
	"regexp"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "how", "why", "when", "where", "do", "does", "did",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether tok carries no retrieval signal.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

// Words returns the lowercased word tokens of text, stopwords included.
func Words(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the lowercased word tokens of text with stopwords removed.
func Terms(text string) []string {
	raw := Words(text)
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sentences splits text into sentences ending in . ! or ?. Text with no
// terminal punctuation yields nil.
func Sentences(text string) []string {
	return sentencePattern.FindAllString(text, -1)
}

// TermSet returns the distinct terms of text.
func TermSet(text string) map[string]struct{} {
	terms := Terms(text)
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

// Overlap counts the distinct terms of text that appear in set.
func Overlap(set map[string]struct{}, text string) int {
	n := 0
	for t := range TermSet(text) {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// SentencesWithTail is Sentences with each sentence trimmed and any
// unterminated trailing text kept as a final sentence.
func SentencesWithTail(text string) []string {
	var out []string
	consumed := 0
	for _, s := range Sentences(text) {
		consumed += strings.Index(text[consumed:], s) + len(s)
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	if tail := strings.TrimSpace(text[consumed:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
