package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArxivIdentifier(t *testing.T) {
	base, vn, err := ParseArxivIdentifier("2101.01234v2")
	require.NoError(t, err)
	assert.Equal(t, "2101.01234", base)
	assert.Equal(t, 2, vn)

	for _, bad := range []string{
		"2101.01234",             // no version
		"2101.01234v0",           // version below 1
		"21.01234v1",             // year-month part too short
		"2101.012v1",             // sequence too short
		"scipost_202101_00031v1", // wrong grammar
		"2101.01234v2 ",          // trailing junk
	} {
		_, _, err := ParseArxivIdentifier(bad)
		assert.ErrorIs(t, err, ErrIdentifierFormat, "input %q", bad)
	}
}

func TestParseScipostIdentifier(t *testing.T) {
	base, vn, err := ParseScipostIdentifier("scipost_202101_00031v1")
	require.NoError(t, err)
	assert.Equal(t, "scipost_202101_00031", base)
	assert.Equal(t, 1, vn)

	_, _, err = ParseScipostIdentifier("scipost_2021_00031v1")
	assert.ErrorIs(t, err, ErrIdentifierFormat)
	_, _, err = ParseScipostIdentifier("2101.01234v1")
	assert.ErrorIs(t, err, ErrIdentifierFormat)
}

func TestFormatScipostBaseRoundTrip(t *testing.T) {
	base := FormatScipostBase(2021, 1, 31)
	assert.Equal(t, "scipost_202101_00031", base)

	parsedBase, vn, err := ParseScipostIdentifier(WithVersion(base, 3))
	require.NoError(t, err)
	assert.Equal(t, base, parsedBase)
	assert.Equal(t, 3, vn)
	assert.True(t, IsScipostIdentifier(WithVersion(base, 3)))
	assert.False(t, IsScipostIdentifier("2101.01234v1"))
}

func intPtr(n int) *int { return &n }

func TestBuildDOILabel(t *testing.T) {
	assert.Equal(t, "SciPostPhys", BuildDOILabel("SciPostPhys", nil, nil, nil))
	assert.Equal(t, "SciPostPhys.10", BuildDOILabel("SciPostPhys", intPtr(10), nil, nil))
	assert.Equal(t, "SciPostPhys.10.2", BuildDOILabel("SciPostPhys", intPtr(10), intPtr(2), nil))
	assert.Equal(t, "SciPostPhys.10.2.045", BuildDOILabel("SciPostPhys", intPtr(10), intPtr(2), intPtr(45)))
	// The paper number keeps its width past three digits.
	assert.Equal(t, "SciPostPhysProc.1234", BuildDOILabel("SciPostPhysProc", nil, nil, intPtr(1234)))
}

func TestDispatchPatternMatch(t *testing.T) {
	pattern, err := NewDispatchPattern([]string{"SciPostPhys", "SciPostPhysProc", "MigPol"})
	require.NoError(t, err)

	match, ok := pattern.Match("SciPostPhys")
	require.True(t, ok)
	assert.Equal(t, "SciPostPhys", match.JournalTag)
	assert.Equal(t, 0, match.NrParts())

	match, ok = pattern.Match("SciPostPhys.10.2.045")
	require.True(t, ok)
	assert.Equal(t, "SciPostPhys", match.JournalTag)
	assert.Equal(t, "10", match.Part1)
	assert.Equal(t, "2", match.Part2)
	assert.Equal(t, "045", match.Part3)
	assert.Equal(t, 3, match.NrParts())

	// A longer tag must not be shadowed by its prefix.
	match, ok = pattern.Match("SciPostPhysProc.5")
	require.True(t, ok)
	assert.Equal(t, "SciPostPhysProc", match.JournalTag)
	assert.Equal(t, "5", match.Part1)

	// Version/revision suffix.
	match, ok = pattern.Match("SciPostPhys.10.2.045-r1")
	require.True(t, ok)
	assert.Equal(t, "r1", match.Suffix)
	match, ok = pattern.Match("SciPostPhys.10.2.045-v2.1")
	require.True(t, ok)
	assert.Equal(t, "v2.1", match.Suffix)

	// Unknown labels are a not-found signal, never a panic.
	_, ok = pattern.Match("NoSuchJournal.1")
	assert.False(t, ok)
	_, ok = pattern.Match("")
	assert.False(t, ok)
}

func TestNewDispatchPatternEmpty(t *testing.T) {
	_, err := NewDispatchPattern(nil)
	assert.Error(t, err)
}
