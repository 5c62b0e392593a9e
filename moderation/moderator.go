package moderation

import (
	"fmt"
	"log/slog"
	"slices"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// ICensor masks forbidden words in a message before it is encrypted.
type ICensor interface {
	Censor(text string) (string, []string)
}

// Moderator matches a normalized dictionary against normalized text, so leet
// speak and punctuation inserted inside a word do not hide it.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the automaton. Dictionary entries that are empty once
// normalized are skipped; with no usable entry, Censor returns its input.
func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	normalized := lo.Uniq(lo.FilterMap(words, func(word string, _ int) (string, bool) {
		n := normalize(word).normalized
		return string(n), len(n) > 0
	}))
	slices.Sort(normalized)
	patterns := lo.Map(normalized, func(word string, _ int) []rune { return []rune(word) })
	m := &Moderator{replacement: replacement, log: log}
	if len(patterns) == 0 {
		return m, nil
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, fmt.Errorf("building moderation dictionary: %w", err)
	}
	m.matcher = machine
	log.Debug("Moderation dictionary loaded", "words", len(patterns))
	return m, nil
}

// Censor replaces every original character of a matched word, noise included,
// and returns the normalized words that were found.
func (m *Moderator) Censor(text string) (string, []string) {
	if m.matcher == nil {
		return text, nil
	}
	mapping := normalize(text)
	if len(mapping.normalized) == 0 {
		return text, nil
	}
	terms := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(terms) == 0 {
		return text, nil
	}

	runes := []rune(text)
	var found []string
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			runes[i] = m.replacement
		}
		found = append(found, string(term.Word))
	}
	return string(runes), found
}

func normalize(input string) textMapping {
	runes := []rune(input)
	mapping := textMapping{
		normalized: make([]rune, 0, len(runes)),
		origIdx:    make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		mapping.normalized = append(mapping.normalized, unicode.ToLower(clean))
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}

// simplifyRune maps common leet speak characters back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
