package summarizer

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/textproc"
)

// biasWeight is added per occurrence of a focus term.
const biasWeight = 3.0

// FrequencySummarizer is an extractive summarizer: sentences whose words are
// frequent across the whole text score highest.
type FrequencySummarizer struct {
	focus map[string]struct{}
}

var _ domain.Summarizer = (*FrequencySummarizer)(nil)

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{}
}

// WithBias returns a copy that favours sentences sharing terms with focus,
// typically the question being answered.
func (s *FrequencySummarizer) WithBias(focus string) *FrequencySummarizer {
	return &FrequencySummarizer{focus: textproc.TermSet(focus)}
}

// Summarize picks the maxSentences best sentences of text (5 when
// non-positive) and joins them in their original order. Text without a
// terminated sentence is returned trimmed.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := textproc.Sentences(text)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	weights := termWeights(sentences)
	scores := make([]float64, len(sentences))
	order := make([]int, len(sentences))
	for i, sent := range sentences {
		scores[i] = s.score(sent, weights)
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(scores[b], scores[a]) })

	picked := order[:min(maxSentences, len(order))]
	slices.Sort(picked)
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(out, " "), nil
}

// termWeights maps each term to its frequency relative to the most frequent.
func termWeights(sentences []string) map[string]float64 {
	counts := make(map[string]float64)
	top := 0.0
	for _, sent := range sentences {
		for _, t := range textproc.Terms(sent) {
			counts[t]++
			top = math.Max(top, counts[t])
		}
	}
	if top > 0 {
		for t := range counts {
			counts[t] /= top
		}
	}
	return counts
}

// score sums word weights, dampened by the square root of sentence length.
func (s *FrequencySummarizer) score(sentence string, weights map[string]float64) float64 {
	words := textproc.Words(sentence)
	if len(words) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range words {
		total += weights[w]
		if _, ok := s.focus[w]; ok {
			total += biasWeight
		}
	}
	return total / math.Sqrt(float64(len(words)))
}
