// Package textmarkup parses reading-markup annotations out of line text,
// splitting it into display text (shown in subtitles) and spoken text
// (sent to the TTS engine). Grounded on the teacher's internal/naming
// rule-dispatch engine (a Rule pairs a pattern with an extractor,
// evaluated first-match-wins) adapted from filename grammar to markup
// grammar.
package textmarkup

import "regexp"

// Mode selects which reading-markup grammar, if any, raw text is parsed
// with. ModeNone is the identity rule: display and spoken text are both
// the input unchanged.
type Mode string

const (
	ModeNone Mode = "none"
	ModeRuby Mode = "ruby"
)

// Rule pairs a pattern with the function that rewrites a match into its
// display and spoken forms. Rules are evaluated in order; Parse applies
// every rule's pattern globally across the text (markup annotations
// don't compete for the same span the way filename rules do), so Rules
// here is a list of markup *grammars* to try in order until one matches
// anything, not a single first-match-wins dispatch per span.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Extract returns (display, spoken) for one regex match's submatches.
	Extract func(match []string) (display, spoken string)
}

// rubyPattern matches a ruby annotation: a run of characters other than
// whitespace, punctuation and hiragana immediately followed by a
// parenthesized reading, e.g. "漢字(かんじ)" or "Claude(クロード)".
var rubyPattern = regexp.MustCompile(`([^\s\p{P}\p{Hiragana}]+)\(([^()]+)\)`)

var rules = map[Mode]Rule{
	ModeRuby: {
		Name:    "ruby",
		Pattern: rubyPattern,
		Extract: func(m []string) (string, string) { return m[1], m[2] },
	},
}

// Parse splits raw into (display_text, tts_text) per mode. ModeNone (or
// any unrecognized mode) is the identity: both outputs equal raw, so
// Parse(plain, ModeNone) == (plain, plain) for any plain text with no
// markup, matching the round-trip property plain text must satisfy.
func Parse(raw string, mode Mode) (display, tts string) {
	rule, ok := rules[mode]
	if !ok {
		return raw, raw
	}
	display = rule.Pattern.ReplaceAllStringFunc(raw, func(s string) string {
		m := rule.Pattern.FindStringSubmatch(s)
		d, _ := rule.Extract(m)
		return d
	})
	tts = rule.Pattern.ReplaceAllStringFunc(raw, func(s string) string {
		m := rule.Pattern.FindStringSubmatch(s)
		_, sp := rule.Extract(m)
		return sp
	})
	return display, tts
}
