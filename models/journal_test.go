package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestJournalStructureHelpers(t *testing.T) {
	j := Journal{Structure: StructureIssuesAndVolumes}
	assert.True(t, j.HasVolumes())
	assert.True(t, j.HasIssues())

	j.Structure = StructureIssuesOnly
	assert.False(t, j.HasVolumes())
	assert.True(t, j.HasIssues())

	j.Structure = StructureIndividualPublications
	assert.False(t, j.HasVolumes())
	assert.False(t, j.HasIssues())
}

func TestJournalPeriods(t *testing.T) {
	j := Journal{AssignmentPeriodDays: 28, RefereeingPeriodDays: 42}
	assert.Equal(t, 28*24*time.Hour, j.AssignmentPeriod())
	assert.Equal(t, 42*24*time.Hour, j.RefereeingPeriod())
}

func TestCostPerPublication(t *testing.T) {
	j := Journal{
		DOILabel: "SciPostPhys",
		CostInfo: strPtr(`{"default": 400, "2024": 450, "2025": 500}`),
	}

	cost, err := j.CostPerPublication(2025)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cost)

	// Years without an entry fall back to the default.
	cost, err = j.CostPerPublication(2019)
	require.NoError(t, err)
	assert.Equal(t, 400.0, cost)
}

func TestCostPerPublicationMissingDefault(t *testing.T) {
	j := Journal{DOILabel: "SciPostPhys", CostInfo: strPtr(`{"2024": 450}`)}
	_, err := j.CostPerPublication(2019)
	assert.Error(t, err)

	empty := Journal{DOILabel: "MigPol"}
	_, err = empty.CostPerPublication(2024)
	assert.Error(t, err)

	malformed := Journal{DOILabel: "MigPol", CostInfo: strPtr(`{`)}
	_, err = malformed.CostPerPublication(2024)
	assert.Error(t, err)
}

func TestSubmissionStateHelpers(t *testing.T) {
	s := Submission{Status: SubInRefereeing}
	assert.True(t, s.InActiveSet())
	assert.False(t, s.InTerminalState())

	s.Status = SubPublished
	assert.False(t, s.InActiveSet())
	assert.True(t, s.InTerminalState())

	s.Status = SubResubmitted
	assert.False(t, s.InActiveSet())
	assert.True(t, s.InTerminalState())
}
