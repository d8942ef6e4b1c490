package chat

import (
	"slices"
	"strings"
	"unicode"

	goaway "github.com/TwiN/go-away"
)

// ContentFilter decides whether a message body may be relayed.
type ContentFilter interface {
	IsProfane(text string) bool
}

// inflectedProfanities extends the go-away dictionary with common forms that a
// whole-word match would otherwise let through.
var inflectedProfanities = []string{
	"asses", "bastards", "bitches", "bitchy", "boobs", "cocks", "cunts", "dicks",
	"fucked", "fucker", "fuckers", "fucking", "fucks", "pricks", "shits", "shitty",
	"sluts", "turds", "wanker", "whores",
}

// profanityFilter flags a message only when one of its words is profane as a whole,
// so "assessment" or "Dickens" pass while "sh1t" does not.
type profanityFilter struct {
	detector *goaway.ProfanityDetector
}

// NewProfanityFilter returns a ContentFilter backed by the go-away dictionary, with
// leetspeak, accent and special-character sanitizing enabled.
func NewProfanityFilter() ContentFilter {
	detector := goaway.NewProfanityDetector().
		WithSanitizeLeetSpeak(true).
		WithSanitizeSpecialCharacters(true).
		WithSanitizeAccents(true).
		WithCustomDictionary(
			slices.Concat(goaway.DefaultProfanities, inflectedProfanities),
			goaway.DefaultFalsePositives,
			goaway.DefaultFalseNegatives,
		)

	return &profanityFilter{detector: detector}
}

func (f *profanityFilter) IsProfane(text string) bool {
	for _, word := range strings.FieldsFunc(text, isWordBreak) {
		if f.isProfaneWord(strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// isProfaneWord reports whether the detector censors every letter and digit of word.
func (f *profanityFilter) isProfaneWord(word string) bool {
	original := []rune(word)
	censored := []rune(f.detector.Censor(word))
	if len(censored) != len(original) {
		return false
	}

	hit := false
	for i, r := range original {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if censored[i] != '*' {
			return false
		}
		hit = true
	}
	return hit
}

// isWordBreak splits on anything that is neither a letter, a digit nor a leetspeak
// stand-in such as '$' or '@'.
func isWordBreak(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	replacement, ok := goaway.DefaultCharacterReplacements[r]
	return !ok || replacement == ' '
}
