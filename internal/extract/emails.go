package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	directPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// name [at] domain [dot] tld, with either brackets or parentheses around the markers.
	obfuscatedPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+\s*[\[\(]at[\]\)]\s*[a-zA-Z0-9.-]+\s*[\[\(]dot[\]\)]\s*[a-zA-Z]{2,}`)

	atMarker  = regexp.MustCompile(`[\[\(]at[\]\)]`)
	dotMarker = regexp.MustCompile(`[\[\(]dot[\]\)]`)
)

// Emails returns every email-like token in text, including de-obfuscated
// "name [at] domain [dot] com" forms. The result has no duplicates and keeps
// the order of first appearance, direct matches before de-obfuscated ones.
// Case is preserved: "Bob@x.io" and "bob@x.io" are distinct.
func Emails(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(email string) {
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}

	for _, m := range directPattern.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range obfuscatedPattern.FindAllString(text, -1) {
		add(Deobfuscate(m))
	}
	return out
}

// Deobfuscate rewrites the [at]/(at) and [dot]/(dot) markers of a single
// obfuscated token and strips all whitespace.
func Deobfuscate(token string) string {
	token = atMarker.ReplaceAllString(token, "@")
	token = dotMarker.ReplaceAllString(token, ".")
	return strings.Join(strings.Fields(token), "")
}

// Context returns up to window bytes of text on either side of the first
// occurrence of needle. The boundaries are moved inward to rune starts so the
// snippet is always valid UTF-8. ok is false when needle does not occur verbatim,
// which is the case for de-obfuscated addresses.
func Context(text, needle string, window int) (snippet string, ok bool) {
	pos := strings.Index(text, needle)
	if pos < 0 || needle == "" {
		return "", false
	}

	start := max(0, pos-window)
	end := min(len(text), pos+len(needle)+window)

	for start < pos && !utf8.RuneStart(text[start]) {
		start++
	}
	for end < len(text) && end > pos+len(needle) && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[start:end], true
}
