// utils/identifier.go - Preprint and DOI identifier grammar
package utils

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrIdentifierFormat marks unparseable identifiers. Callers surface it as a
// field error during intake; it is never silently coerced.
var ErrIdentifierFormat = errors.New("invalid identifier format")

var (
	arxivRegex   = regexp.MustCompile(`^(\d{4,}\.\d{4,5})v(\d{1,2})$`)
	scipostRegex = regexp.MustCompile(`^(scipost_\d{6}_\d{5,})v(\d{1,2})$`)
)

// ParseArxivIdentifier splits an arXiv-style identifier with version suffix
// ("2101.01234v2") into base id and version number.
func ParseArxivIdentifier(s string) (string, int, error) {
	m := arxivRegex.FindStringSubmatch(s)
	if m == nil {
		return "", 0, fmt.Errorf("%q is not an arXiv identifier: %w", s, ErrIdentifierFormat)
	}
	vn, err := strconv.Atoi(m[2])
	if err != nil || vn < 1 {
		return "", 0, fmt.Errorf("%q has a bad version number: %w", s, ErrIdentifierFormat)
	}
	return m[1], vn, nil
}

// ParseScipostIdentifier splits a SciPost-native identifier
// ("scipost_202101_00031v1") into base id and version number.
func ParseScipostIdentifier(s string) (string, int, error) {
	m := scipostRegex.FindStringSubmatch(s)
	if m == nil {
		return "", 0, fmt.Errorf("%q is not a scipost identifier: %w", s, ErrIdentifierFormat)
	}
	vn, err := strconv.Atoi(m[2])
	if err != nil || vn < 1 {
		return "", 0, fmt.Errorf("%q has a bad version number: %w", s, ErrIdentifierFormat)
	}
	return m[1], vn, nil
}

// IsScipostIdentifier reports whether s (with version suffix) is
// SciPost-native rather than arXiv-style.
func IsScipostIdentifier(s string) bool {
	return strings.HasPrefix(s, "scipost_")
}

// FormatScipostBase builds a SciPost base identifier for a year/month and
// monthly sequence number.
func FormatScipostBase(year int, month int, seq int) string {
	return fmt.Sprintf("scipost_%04d%02d_%05d", year, month, seq)
}

// WithVersion appends the version suffix to a base identifier.
func WithVersion(base string, vn int) string {
	return fmt.Sprintf("%sv%d", base, vn)
}

// BuildDOILabel joins the present containment components with dots; the
// paper number is zero-padded to at least three digits.
func BuildDOILabel(journalLabel string, volumeNr, issueNr, paperNr *int) string {
	parts := []string{journalLabel}
	if volumeNr != nil {
		parts = append(parts, strconv.Itoa(*volumeNr))
	}
	if issueNr != nil {
		parts = append(parts, strconv.Itoa(*issueNr))
	}
	if paperNr != nil {
		parts = append(parts, fmt.Sprintf("%03d", *paperNr))
	}
	return strings.Join(parts, ".")
}

// DOIMatch is the decomposition of a DOI label or URL path segment against
// the dispatch grammar. Parts are in containment order; empty strings mark
// absent levels.
type DOIMatch struct {
	JournalTag string
	Part1      string
	Part2      string
	Part3      string
	Suffix     string
}

// NrParts counts the present numeric/word parts.
func (m *DOIMatch) NrParts() int {
	n := 0
	for _, p := range []string{m.Part1, m.Part2, m.Part3} {
		if p != "" {
			n++
		}
	}
	return n
}

// DispatchPattern matches DOI labels against the configured journal set.
// Build one with NewDispatchPattern whenever the journal set changes; the
// regex is never built at import time.
type DispatchPattern struct {
	re *regexp.Regexp
}

// NewDispatchPattern compiles the combined dispatch regex
// JOURNAL_TAG(.PART1(.PART2(.PART3)?)?)?(-SUFFIX)? for the given journal doi
// labels. Longer tags are tried first so that one label being a prefix of
// another cannot shadow it.
func NewDispatchPattern(journalLabels []string) (*DispatchPattern, error) {
	if len(journalLabels) == 0 {
		return nil, errors.New("dispatch pattern needs at least one journal label")
	}
	labels := make([]string, len(journalLabels))
	copy(labels, journalLabels)
	sort.Slice(labels, func(i, j int) bool {
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) > len(labels[j])
		}
		return labels[i] < labels[j]
	})
	for i, l := range labels {
		labels[i] = regexp.QuoteMeta(l)
	}
	expr := fmt.Sprintf(
		`^(?P<journal>%s)(\.(?P<part1>\w+))?(\.(?P<part2>\d+))?(\.(?P<part3>\d{3,}))?(-(?P<suffix>[rv]\d+(\.\d+)?|\w+))?$`,
		strings.Join(labels, "|"))
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling dispatch pattern: %w", err)
	}
	return &DispatchPattern{re: re}, nil
}

// Match decomposes a DOI label. The second return value is false when the
// label does not belong to the grammar; that is a not-found signal, not an
// error.
func (p *DispatchPattern) Match(label string) (*DOIMatch, bool) {
	m := p.re.FindStringSubmatch(label)
	if m == nil {
		return nil, false
	}
	match := &DOIMatch{}
	for i, name := range p.re.SubexpNames() {
		switch name {
		case "journal":
			match.JournalTag = m[i]
		case "part1":
			match.Part1 = m[i]
		case "part2":
			match.Part2 = m[i]
		case "part3":
			match.Part3 = m[i]
		case "suffix":
			match.Suffix = m[i]
		}
	}
	return match, true
}
