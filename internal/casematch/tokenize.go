// internal/casematch/tokenize.go
package casematch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// termSeparators split free text into terms. Whitespace is not a separator so
// multi-word Korean terms such as "소화 불량" stay whole.
const termSeparators = ",;/·、\n"

// normalizeTerm applies NFKC, case folding and whitespace collapsing.
func normalizeTerm(s string) string {
	s = norm.NFKC.String(s)
	// cases.Caser is stateful; one per call.
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// term keeps the matching key next to the text shown to users.
type term struct {
	key  string
	text string
}

// splitTerms breaks free text on list punctuation and normalizes each piece.
func splitTerms(text string) []term {
	text = norm.NFKC.String(text)
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(termSeparators, r)
	})
	return uniqueTerms(raw)
}

// atomicTerms normalizes each entry without splitting it further.
func atomicTerms(items []string) []term {
	return uniqueTerms(items)
}

// uniqueTerms normalizes, drops empties and keeps the first occurrence of each key.
func uniqueTerms(items []string) []term {
	out := make([]term, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := normalizeTerm(item)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term{key: key, text: strings.Join(strings.Fields(norm.NFKC.String(item)), " ")})
	}
	return out
}

func termKeys(terms []term) []string {
	keys := make([]string, len(terms))
	for i, t := range terms {
		keys[i] = t.key
	}
	return keys
}

// termIndex is the searchable form of one candidate field group.
type termIndex struct {
	terms  map[string]struct{}
	padded []string
}

func newTermIndex(terms []string) termIndex {
	idx := termIndex{
		terms:  make(map[string]struct{}, len(terms)),
		padded: make([]string, 0, len(terms)),
	}
	for _, t := range terms {
		idx.terms[t] = struct{}{}
		idx.padded = append(idx.padded, " "+t+" ")
	}
	return idx
}

// contains reports a whole-term hit or a run of whole words inside one
// candidate term. "소화 불량" matches "만성 소화 불량"; "열" never matches "무열".
func (idx termIndex) contains(term string) bool {
	if term == "" {
		return false
	}
	if _, ok := idx.terms[term]; ok {
		return true
	}
	needle := " " + term + " "
	for _, p := range idx.padded {
		if strings.Contains(p, needle) {
			return true
		}
	}
	return false
}
