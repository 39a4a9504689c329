package query

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Settings tunes the retrieval pipeline. Zero values are not defaulted
// here; the config layer guarantees sane values.
type Settings struct {
	RewriteEnabled   bool
	ShortQueryLength int
	TopKShort        int
	TopKMedium       int
	TopKLong         int
	MinScoreShort    float64
	MinScoreDefault  float64
	StreamProbeChars int
}

// mediumQueryLength is the upper bound (in compact runes) of the medium
// parameter tier. Only the short bound is configurable.
const mediumQueryLength = 12

// searchParams is one of the three fixed retrieval parameter tiers.
type searchParams struct {
	TopK     int
	MinScore float64
}

// queryContext is built once per request and read-only afterwards.
type queryContext struct {
	normalizedQuestion string
	candidates         []string
	params             searchParams
}

// normalizeQuestion trims the raw question; nothing else. Blank means the
// question is absent.
func normalizeQuestion(question string) string {
	return strings.TrimSpace(question)
}

// resolveSearchParams picks the parameter tier from the question length
// with all whitespace removed. Short queries are lexically ambiguous, so
// retrieval casts a wider net with a lower score floor; long specific
// queries get fewer, higher-confidence results.
func (s *Service) resolveSearchParams(question string) searchParams {
	compactLength := compactRuneCount(question)
	if compactLength <= s.settings.ShortQueryLength {
		return searchParams{TopK: s.settings.TopKShort, MinScore: s.settings.MinScoreShort}
	}
	if compactLength <= mediumQueryLength {
		return searchParams{TopK: s.settings.TopKMedium, MinScore: s.settings.MinScoreDefault}
	}
	return searchParams{TopK: s.settings.TopKLong, MinScore: s.settings.MinScoreDefault}
}

func compactRuneCount(s string) int {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return utf8.RuneCountInString(compact)
}

// shortTokenPattern matches a single short alphanumeric token (letters,
// digits, underscore, hyphen; 2–20 runes), e.g. an acronym or one
// technical term.
var shortTokenPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]{2,20}$`)

func isShortTokenQuery(question string) bool {
	return shortTokenPattern.MatchString(strings.TrimSpace(question))
}
