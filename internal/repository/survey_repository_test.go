package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-api/internal/models"
)

func newSurveyMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func employerRow(t *surveyTable, userName string, createdAt time.Time, name string) *sqlmock.Rows {
	values := make([]driver.Value, len(t.columns))
	for i, col := range t.columns {
		switch col {
		case "user_name":
			values[i] = userName
		case "created_at":
			values[i] = createdAt
		case "e_q1_employer_name":
			values[i] = name
		default:
			values[i] = nil
		}
	}
	return sqlmock.NewRows(t.columns).AddRow(values...)
}

func TestUpsertQueryOverwritesEveryColumn(t *testing.T) {
	table := newSurveyTable(nil, "student_surveys", models.SurveyTypeStudent)
	query := table.upsertQuery()

	assert.Len(t, table.columns, 33)
	assert.Contains(t, query, "ON CONFLICT (user_name) DO UPDATE SET")
	assert.Contains(t, query, "created_at = EXCLUDED.created_at")
	assert.Contains(t, query, "s_q29_advice_for_others = EXCLUDED.s_q29_advice_for_others")
	assert.Contains(t, query, "image_public_id = EXCLUDED.image_public_id")
	assert.NotContains(t, query, "user_name = EXCLUDED.user_name")
}

func TestEmployerRepositoryUpsertReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newSurveyMock(t)
	defer cleanup()
	repo := NewEmployerSurveyRepository(db)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectQuery("INSERT INTO employer_surveys .* ON CONFLICT \\(user_name\\) DO UPDATE SET .* RETURNING").
		WillReturnRows(employerRow(&repo.table, "acme", fixed, "Acme Ltd"))

	name := "Acme Ltd"
	stored, err := repo.Upsert(context.Background(), &models.EmployerSurvey{
		SurveyMeta:     models.SurveyMeta{UserName: "acme"},
		Q1EmployerName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", stored.UserName)
	assert.Equal(t, fixed, stored.CreatedAt)
	require.NotNil(t, stored.Q1EmployerName)
	assert.Equal(t, "Acme Ltd", *stored.Q1EmployerName)
	assert.Nil(t, stored.Q5CandidatesSuitable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSurveyStoreFindByUserNotFound(t *testing.T) {
	db, mock, cleanup := newSurveyMock(t)
	defer cleanup()
	store := NewSQLSurveyStore(db)

	mock.ExpectQuery("SELECT .* FROM student_surveys WHERE user_name = \\$1").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(store.students.table.columns))

	record, err := store.FindByUser(context.Background(), models.SurveyTypeStudent, "ghost")
	assert.Nil(t, record)
	assert.True(t, errors.Is(err, ErrSurveyNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSurveyStoreListAndDelete(t *testing.T) {
	db, mock, cleanup := newSurveyMock(t)
	defer cleanup()
	store := NewSQLSurveyStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .* FROM employer_surveys ORDER BY created_at DESC").
		WillReturnRows(employerRow(&store.employers.table, "acme", now, "Acme Ltd"))
	records, err := store.ListByType(context.Background(), models.SurveyTypeEmployer)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SurveyTypeEmployer, records[0].SurveyType())
	assert.Equal(t, "acme", records[0].Meta().UserName)

	mock.ExpectQuery("DELETE FROM employer_surveys WHERE user_name = \\$1 RETURNING").
		WithArgs("acme").
		WillReturnRows(employerRow(&store.employers.table, "acme", now, "Acme Ltd"))
	deleted, err := store.Delete(context.Background(), models.SurveyTypeEmployer, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", deleted.Meta().UserName)

	_, err = store.ListByType(context.Background(), models.SurveyType("Volunteer"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
