// Package diff computes ordered edit scripts between two plain texts using a
// Myers difference algorithm. Output is deterministic: the same inputs and
// granularity always produce the same script.
package diff

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Granularity selects the token unit for the edit script
type Granularity string

const (
	GranularityWord      Granularity = "word"
	GranularityCharacter Granularity = "character"
)

// ParseGranularity validates a user-supplied granularity string.
// An empty value defaults to word granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "":
		return GranularityWord, nil
	case GranularityWord, GranularityCharacter:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want word or character)", s)
	}
}

// Kind classifies one segment of an edit script
type Kind string

const (
	KindUnchanged Kind = "unchanged"
	KindAdded     Kind = "added"
	KindRemoved   Kind = "removed"
)

// Segment is one unit of an edit script. Concatenating the unchanged and
// added segments in order reproduces the new text; unchanged and removed
// reproduce the old text.
type Segment struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Stats aggregates an edit script
type Stats struct {
	Additions int `json:"additions"` // total rune length of added segments
	Deletions int `json:"deletions"` // total rune length of removed segments
}

// Compute produces the edit script between two texts at the given granularity.
func Compute(oldText, newText string, granularity Granularity) ([]Segment, error) {
	switch granularity {
	case GranularityWord:
		return wordDiff(oldText, newText), nil
	case GranularityCharacter:
		return charDiff(oldText, newText), nil
	default:
		return nil, fmt.Errorf("unknown granularity %q", granularity)
	}
}

// ComputeStats aggregates the added and removed lengths of a script
func ComputeStats(script []Segment) Stats {
	var s Stats
	for _, seg := range script {
		switch seg.Kind {
		case KindAdded:
			s.Additions += utf8.RuneCountInString(seg.Text)
		case KindRemoved:
			s.Deletions += utf8.RuneCountInString(seg.Text)
		}
	}
	return s
}

func charDiff(oldText, newText string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemanticLossless(diffs)
	return toSegments(diffs)
}

// wordDiff maps word and whitespace tokens to placeholder runes, diffs the
// placeholder strings, then re-materializes the tokens. Same trick the
// library itself uses for line-mode diffs, at word granularity.
func wordDiff(oldText, newText string) []Segment {
	oldTokens := tokenize(oldText)
	newTokens := tokenize(newText)

	index := make(map[string]rune)
	var tokens []string
	encode := func(parts []string) string {
		var sb strings.Builder
		for _, tok := range parts {
			r, ok := index[tok]
			if !ok {
				// Placeholder runes start above the surrogate range to stay
				// valid UTF-8 regardless of token count ordering.
				r = rune(0xE000 + len(tokens))
				index[tok] = r
				tokens = append(tokens, tok)
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}

	encodedOld := encode(oldTokens)
	encodedNew := encode(newTokens)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(encodedOld, encodedNew, false)

	// Re-materialize tokens from placeholder runes
	for i, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(tokens[int(r-0xE000)])
		}
		diffs[i].Text = sb.String()
	}

	return toSegments(diffs)
}

// tokenize splits text into alternating runs of non-space and space runes,
// preserving every byte of the input.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	var inSpace bool

	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if i > 0 && isSpace != inSpace {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		inSpace = isSpace
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// toSegments converts library diffs into segments, merging adjacent segments
// of the same kind and dropping empties.
func toSegments(diffs []diffmatchpatch.Diff) []Segment {
	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		kind := KindUnchanged
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = KindAdded
		case diffmatchpatch.DiffDelete:
			kind = KindRemoved
		}
		if n := len(segments); n > 0 && segments[n-1].Kind == kind {
			segments[n-1].Text += d.Text
			continue
		}
		segments = append(segments, Segment{Kind: kind, Text: d.Text})
	}
	return segments
}
