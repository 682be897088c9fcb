package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadRows(identifiers ...string) (*sqlmock.Rows, *sqlmock.Rows) {
	submissions := sqlmock.NewRows([]string{"submission_id", "thread_hash", "preprint_id"})
	preprints := sqlmock.NewRows([]string{"preprint_id", "identifier_w_vn_nr"})
	for i, id := range identifiers {
		submissions.AddRow(i+1, "thread-1", i+100)
		preprints.AddRow(i+100, id)
	}
	return submissions, preprints
}

func TestGenerateScipostIdentifierReusesThreadBase(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPreprintService(db)

	// An arXiv version followed by a SciPost-native one; the thread base is
	// reused and the version counts only prior SciPost versions.
	subs, preprints := threadRows("2101.00123v1", "scipost_202101_00031v2")
	mock.ExpectQuery("SELECT (.+) FROM `submissions` WHERE thread_hash = (.+)").
		WithArgs("thread-1").
		WillReturnRows(subs)
	mock.ExpectQuery("SELECT (.+) FROM `preprints` WHERE `preprints`").
		WillReturnRows(preprints)

	id, err := svc.GenerateScipostIdentifier("thread-1", time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "scipost_202101_00031v3", id)
	assert.NotEqual(t, "scipost_202101_00031v2", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateScipostIdentifierNeverReissuesVersion(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPreprintService(db)

	// Two arXiv versions before the first SciPost one: the next version is
	// one past the highest vn on the base, never a number already taken.
	subs, preprints := threadRows("2101.00123v1", "2101.00123v2", "scipost_202101_00031v3")
	mock.ExpectQuery("SELECT (.+) FROM `submissions` WHERE thread_hash = (.+)").
		WithArgs("thread-1").
		WillReturnRows(subs)
	mock.ExpectQuery("SELECT (.+) FROM `preprints` WHERE `preprints`").
		WillReturnRows(preprints)

	id, err := svc.GenerateScipostIdentifier("thread-1", time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "scipost_202101_00031v4", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateScipostIdentifierMintsMonthlyBase(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPreprintService(db)

	// Two prior arXiv versions, no SciPost base to reuse: mint the next
	// sequence number for the month and version past all prior versions.
	subs, preprints := threadRows("2101.00123v1", "2101.00123v2")
	mock.ExpectQuery("SELECT (.+) FROM `submissions` WHERE thread_hash = (.+)").
		WithArgs("thread-1").
		WillReturnRows(subs)
	mock.ExpectQuery("SELECT (.+) FROM `preprints` WHERE `preprints`").
		WillReturnRows(preprints)
	mock.ExpectQuery("SELECT `identifier_w_vn_nr` FROM `preprints` WHERE identifier_w_vn_nr LIKE (.+)").
		WithArgs("scipost_202103_%").
		WillReturnRows(sqlmock.NewRows([]string{"identifier_w_vn_nr"}).
			AddRow("scipost_202103_00007v1").
			AddRow("scipost_202103_00012v1"))

	id, err := svc.GenerateScipostIdentifier("thread-1", time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "scipost_202103_00013v3", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateScipostIdentifierFirstOfMonth(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPreprintService(db)

	mock.ExpectQuery("SELECT (.+) FROM `submissions` WHERE thread_hash = (.+)").
		WithArgs("thread-2").
		WillReturnRows(sqlmock.NewRows([]string{"submission_id", "thread_hash", "preprint_id"}))
	mock.ExpectQuery("SELECT `identifier_w_vn_nr` FROM `preprints` WHERE identifier_w_vn_nr LIKE (.+)").
		WithArgs("scipost_202104_%").
		WillReturnRows(sqlmock.NewRows([]string{"identifier_w_vn_nr"}))

	id, err := svc.GenerateScipostIdentifier("thread-2", time.Date(2021, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "scipost_202104_00001v1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
