// Package summarizer produces the short document summary returned by the
// ingestion pipeline.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenRe    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// FrequencySummarizer selects the most representative sentences by
// normalized token frequency, stopwords excluded.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: defaultStopwords()}
}

// Summarize returns up to maxSentences sentences, kept in document order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	maxFreq := 0.0
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			if _, skip := s.stopwords[tok]; skip {
				continue
			}
			freq[tok]++
			if freq[tok] > maxFreq {
				maxFreq = freq[tok]
			}
		}
	}
	if maxFreq > 0 {
		for tok := range freq {
			freq[tok] /= maxFreq
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		total := 0.0
		for _, tok := range toks {
			total += freq[tok]
		}
		// Length normalization keeps long sentences from dominating.
		if n := float64(len(toks)); n > 0 {
			total /= math.Sqrt(n)
		}
		scores[i] = ranked{idx: i, score: total}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(out, " "), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "than", "so",
		"such", "into", "about", "between", "through", "during", "before",
		"after", "out", "off", "own", "same", "too", "very", "can", "will",
		"just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
