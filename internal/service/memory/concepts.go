package memory

import (
	"sort"
	"strings"
	"unicode"
)

const maxConcepts = 5

// stopwords are never concepts. The list covers conversational filler, not
// every English function word.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "him": {}, "his": {},
	"how": {}, "its": {}, "may": {}, "who": {}, "did": {}, "get": {},
	"use": {}, "what": {}, "when": {}, "where": {}, "which": {}, "with": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "from": {}, "have": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "about": {},
	"there": {}, "their": {}, "they": {}, "them": {}, "then": {}, "than": {},
	"your": {}, "just": {}, "like": {}, "some": {}, "such": {}, "into": {},
	"also": {}, "because": {}, "does": {}, "doing": {}, "very": {},
	"here": {}, "more": {}, "most": {}, "other": {}, "only": {}, "over": {},
	"please": {}, "tell": {},
}

// ConceptExtractor pulls key terms out of interaction text by lexical
// frequency. It stands in for the model-based extraction a heavier memory
// backend would do, and is deliberately deterministic.
type ConceptExtractor struct {
	limit int
}

func NewConceptExtractor() *ConceptExtractor {
	return &ConceptExtractor{limit: maxConcepts}
}

func (e *ConceptExtractor) ExtractConcepts(text string) []string {
	counts := make(map[string]int)

	for _, word := range splitWords(text) {
		if len(word) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		counts[word]++
	}

	if len(counts) == 0 {
		return nil
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}

	// Frequency first, then alphabetical for a stable result.
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > e.limit {
		terms = terms[:e.limit]
	}
	return terms
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
