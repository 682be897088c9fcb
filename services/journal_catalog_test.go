package services

import (
	"testing"

	"scipost-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalRow(id int, label, structure string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"journal_id", "name", "doi_label", "structure"}).
		AddRow(id, "Journal "+label, label, structure)
}

func TestResolveDOILabel(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewJournalCatalogService(db)

	// The dispatch pattern is built once and cached.
	mock.ExpectQuery("SELECT `doi_label` FROM `journals`").
		WillReturnRows(sqlmock.NewRows([]string{"doi_label"}).
			AddRow("SciPostPhys").AddRow("MigPol"))
	require.NoError(t, svc.RefreshDispatchPattern())

	t.Run("journal", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `journals` WHERE doi_label = (.+)").
			WithArgs("SciPostPhys").
			WillReturnRows(journalRow(1, "SciPostPhys", models.StructureIssuesAndVolumes))

		resolution, err := svc.ResolveDOILabel("SciPostPhys")
		require.NoError(t, err)
		assert.Equal(t, ResolvedJournal, resolution.Kind)
		require.NotNil(t, resolution.Journal)
		assert.Equal(t, "SciPostPhys", resolution.Journal.DOILabel)
	})

	t.Run("volume", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `journals` WHERE doi_label = (.+)").
			WithArgs("SciPostPhys").
			WillReturnRows(journalRow(1, "SciPostPhys", models.StructureIssuesAndVolumes))
		mock.ExpectQuery("SELECT (.+) FROM `volumes` WHERE journal_id = (.+) AND number = (.+)").
			WithArgs(1, 10).
			WillReturnRows(sqlmock.NewRows([]string{"volume_id", "journal_id", "number", "doi_label"}).
				AddRow(3, 1, 10, "SciPostPhys.10"))

		resolution, err := svc.ResolveDOILabel("SciPostPhys.10")
		require.NoError(t, err)
		assert.Equal(t, ResolvedVolume, resolution.Kind)
		require.NotNil(t, resolution.Volume)
		assert.Equal(t, "SciPostPhys.10", resolution.Volume.DOILabel)
	})

	t.Run("issues-only publication passthrough", func(t *testing.T) {
		// Two parts on an issues-only journal name a publication; the stored
		// label is matched verbatim, never re-padded.
		mock.ExpectQuery("SELECT (.+) FROM `journals` WHERE doi_label = (.+)").
			WithArgs("MigPol").
			WillReturnRows(journalRow(2, "MigPol", models.StructureIssuesOnly))
		mock.ExpectQuery("SELECT (.+) FROM `publications` WHERE journal_id = (.+) AND doi_label = (.+)").
			WithArgs(2, "MigPol.2021.5").
			WillReturnRows(sqlmock.NewRows([]string{"publication_id", "journal_id", "doi_label", "paper_nr"}).
				AddRow(9, 2, "MigPol.2021.5", 5))

		resolution, err := svc.ResolveDOILabel("MigPol.2021.5")
		require.NoError(t, err)
		assert.Equal(t, ResolvedPublication, resolution.Kind)
		require.NotNil(t, resolution.Publication)
		assert.Equal(t, "MigPol.2021.5", resolution.Publication.DOILabel)
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := svc.ResolveDOILabel("NoSuchJournal.1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextPaperNumber(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count(.+) FROM `publications` WHERE journal_id = (.+) AND issue_id IS NULL").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	nr, err := NextPaperNumber(db, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, nr)

	issueID := 7
	mock.ExpectQuery("SELECT count(.+) FROM `publications` WHERE journal_id = (.+) AND issue_id = (.+)").
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	nr, err = NextPaperNumber(db, 1, &issueID)
	require.NoError(t, err)
	assert.Equal(t, 1, nr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateVolumeAttachment(t *testing.T) {
	withVolumes := &models.Journal{DOILabel: "SciPostPhys", Structure: models.StructureIssuesAndVolumes}
	assert.True(t, ValidateVolumeAttachment(withVolumes).OK())

	issuesOnly := &models.Journal{DOILabel: "MigPol", Structure: models.StructureIssuesOnly}
	assert.False(t, ValidateVolumeAttachment(issuesOnly).OK())

	individual := &models.Journal{DOILabel: "SciPostPhysProc", Structure: models.StructureIndividualPublications}
	assert.False(t, ValidateVolumeAttachment(individual).OK())
}

func TestValidateIssueAttachment(t *testing.T) {
	volumeID := 3

	withVolumes := &models.Journal{DOILabel: "SciPostPhys", Structure: models.StructureIssuesAndVolumes}
	assert.True(t, ValidateIssueAttachment(withVolumes, &volumeID).OK())
	assert.Contains(t, ValidateIssueAttachment(withVolumes, nil).Errors, "volume_id")

	issuesOnly := &models.Journal{DOILabel: "MigPol", Structure: models.StructureIssuesOnly}
	assert.True(t, ValidateIssueAttachment(issuesOnly, nil).OK())
	assert.Contains(t, ValidateIssueAttachment(issuesOnly, &volumeID).Errors, "volume_id")

	individual := &models.Journal{DOILabel: "SciPostPhysProc", Structure: models.StructureIndividualPublications}
	assert.Contains(t, ValidateIssueAttachment(individual, nil).Errors, "journal_id")
}
