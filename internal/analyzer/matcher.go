package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TermMatch counts the occurrences of one term in a text and collects the
// sentences that mention it.
type TermMatch struct {
	Term      string   `json:"term"`
	Count     int      `json:"count"`
	Sentences []string `json:"sentences"`
}

type sentence struct {
	original string
	lower    string
}

// FindTermMatches scans content for each term, case-insensitively. Terms that
// never occur are omitted; the rest keep their input order.
func FindTermMatches(content string, terms []string) []TermMatch {
	if content == "" || len(terms) == 0 {
		return nil
	}

	lowerContent := strings.ToLower(content)
	sentences := splitSentences(content)

	results := make([]TermMatch, 0, len(terms))
	for _, term := range terms {
		lowerTerm := strings.ToLower(strings.TrimSpace(term))
		if lowerTerm == "" {
			continue
		}
		count := strings.Count(lowerContent, lowerTerm)
		if count == 0 {
			continue
		}
		var matched []string
		for _, s := range sentences {
			if strings.Contains(s.lower, lowerTerm) {
				matched = append(matched, s.original)
			}
		}
		results = append(results, TermMatch{Term: term, Count: count, Sentences: matched})
	}
	return results
}

// Condense shortens content to at most maxChars runes. The opening sentences
// are kept up to a third of the budget; after them, in document order, only the
// sentences that mention one of terms fill the rest. Content that already fits
// is returned unchanged. When nothing is selected, the head of content is kept.
func Condense(content string, terms []string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(content) <= maxChars {
		return content
	}

	lowerTerms := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowerTerms = append(lowerTerms, t)
		}
	}

	var b strings.Builder
	used := 0
	lead := true
	for _, s := range splitSentences(content) {
		n := utf8.RuneCountInString(s.original)
		if used > 0 {
			n++
		}
		if lead && used+n > maxChars/3 {
			lead = false
		}
		if !lead && !mentionsAny(s.lower, lowerTerms) {
			continue
		}
		if used+n > maxChars {
			continue
		}
		if used > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.original)
		used += n
	}
	if b.Len() > 0 {
		return b.String()
	}
	return headRunes(content, maxChars)
}

func mentionsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func headRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// splitSentences splits on '.', '!' and '?', keeping the delimiter with its sentence.
func splitSentences(text string) []sentence {
	if text == "" {
		return nil
	}

	out := make([]sentence, 0, max(1, len(text)/50))
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		out = append(out, sentence{original: s, lower: strings.ToLower(s)})
	}

	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		for end < len(text) && unicode.IsSpace(rune(text[end])) {
			end++
		}
		add(text[start:end])
		start = end
	}
	if start < len(text) {
		add(text[start:])
	}
	return out
}
