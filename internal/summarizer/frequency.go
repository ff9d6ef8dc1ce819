// Package summarizer builds extractive structured summaries by ranking
// sentences on stopword-filtered word frequency.
package summarizer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Frequency is a deterministic extractive summarizer. It holds no state
// beyond compiled patterns and is safe for concurrent use.
type Frequency struct {
	overviewSentences int
	findingSentences  int
	figureSentences   int
	keywordCount      int
	tokenPattern      *regexp.Regexp
	sentencePattern   *regexp.Regexp
	digitPattern      *regexp.Regexp
	stopwords         map[string]struct{}
}

// NewFrequency creates a summarizer with the default section sizes.
func NewFrequency() *Frequency {
	return &Frequency{
		overviewSentences: 3,
		findingSentences:  5,
		figureSentences:   3,
		keywordCount:      8,
		tokenPattern:      regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern:   regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		digitPattern:      regexp.MustCompile(`\p{N}`),
		stopwords:         defaultStopwords(),
	}
}

// Summarize ranks sentences by normalized token frequency and assembles the
// structured sections. Pure transform: same text always yields the same
// summary.
func (f *Frequency) Summarize(_ context.Context, text string) (domain.StructuredSummary, error) {
	if strings.TrimSpace(text) == "" {
		return domain.StructuredSummary{}, fmt.Errorf("%w: nothing to summarize", domain.ErrValidation)
	}

	sentences := f.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	freq := f.frequencies(sentences)
	ranked := f.rank(sentences, freq)

	overview := pickInOrder(sentences, ranked, 0, f.overviewSentences)
	findings := pickInOrder(sentences, ranked, f.overviewSentences, f.findingSentences)

	var figures []string
	for _, idx := range ranked {
		if len(figures) == f.figureSentences {
			break
		}
		if f.digitPattern.MatchString(sentences[idx]) {
			figures = append(figures, sentences[idx])
		}
	}

	return domain.StructuredSummary{
		Overview:    strings.Join(overview, " "),
		KeyFindings: findings,
		Figures:     figures,
		Keywords:    topKeywords(freq, f.keywordCount),
	}, nil
}

// frequencies computes max-normalized token frequencies across sentences.
func (f *Frequency) frequencies(sentences []string) map[string]float64 {
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range f.tokens(sent) {
			if _, stop := f.stopwords[tok]; stop {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	return freq
}

// rank orders sentence indexes by descending score, ties by document order.
func (f *Frequency) rank(sentences []string, freq map[string]float64) []int {
	scores := make([]float64, len(sentences))
	for i, sent := range sentences {
		toks := f.tokens(sent)
		for _, tok := range toks {
			scores[i] += freq[tok]
		}
		// Length normalization keeps long sentences from dominating.
		if len(toks) > 0 {
			scores[i] /= math.Sqrt(float64(len(toks)))
		}
	}
	idxs := make([]int, len(sentences))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})
	return idxs
}

// pickInOrder takes the ranked slice [from, from+count) and returns those
// sentences in their original document order.
func pickInOrder(sentences []string, ranked []int, from, count int) []string {
	if from >= len(ranked) {
		return nil
	}
	to := from + count
	if to > len(ranked) {
		to = len(ranked)
	}
	selected := make([]int, to-from)
	copy(selected, ranked[from:to])
	sort.Ints(selected)

	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return out
}

func topKeywords(freq map[string]float64, count int) []string {
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(a, b int) bool {
		if freq[words[a]] != freq[words[b]] {
			return freq[words[a]] > freq[words[b]]
		}
		return words[a] < words[b]
	})
	if len(words) > count {
		words = words[:count]
	}
	return words
}

func (f *Frequency) tokens(text string) []string {
	return f.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "should", "now", "has", "have", "had", "its", "their",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
