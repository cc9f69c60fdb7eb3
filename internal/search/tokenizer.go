package search

import (
	"regexp"
	"strings"
	"unicode"
)

var wordPattern = regexp.MustCompile(`[a-z][a-z0-9]*`)

// stopWords are English function words plus common keywords that carry no
// meaning in code search.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "shall": true, "can": true,
	"need": true, "dare": true, "ought": true, "used": true, "to": true, "of": true,
	"in": true, "for": true, "on": true, "with": true, "at": true, "by": true,
	"from": true, "as": true, "into": true, "through": true, "during": true,
	"before": true, "after": true, "above": true, "below": true, "between": true,
	"under": true, "again": true, "further": true, "then": true, "once": true,
	"self": true, "this": true, "that": true, "these": true, "those": true,
	"def": true, "class": true, "return": true, "if": true, "else": true, "elif": true,
	"try": true, "except": true, "finally": true, "and": true, "or": true, "not": true,
	"none": true, "true": true, "false": true,
}

// Tokenize extracts search terms from text. The text is lower-cased first, so
// an identifier such as getUserById stays a single term; words of two letters
// or fewer and stop words are dropped. Order and duplicates are kept.
func Tokenize(text string) []string {
	var terms []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// SplitIdentifier breaks a snake_case or camelCase name into lower-case words.
func SplitIdentifier(name string) []string {
	var words []string
	for _, piece := range strings.Split(name, "_") {
		for _, part := range splitCamelCase(piece) {
			if part != "" {
				words = append(words, strings.ToLower(part))
			}
		}
	}
	return words
}

// splitCamelCase breaks before every upper-case letter after the first rune.
func splitCamelCase(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if i > start && unicode.IsUpper(r) {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

// documentText is the searchable text of an entity: its name, the words of
// its name, its signature, and its docstring.
func documentText(name, signature, docstring string) string {
	parts := []string{}
	if name != "" {
		parts = append(parts, name)
		parts = append(parts, SplitIdentifier(name)...)
	}
	if signature != "" {
		parts = append(parts, signature)
	}
	if docstring != "" {
		parts = append(parts, docstring)
	}
	return strings.Join(parts, " ")
}
