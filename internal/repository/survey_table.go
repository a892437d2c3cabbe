package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/survey-api/internal/models"
)

// ErrSurveyNotFound is returned when no survey exists for the requested key.
var ErrSurveyNotFound = errors.New("survey not found")

var metaColumns = []string{"user_name", "created_at", "image_url", "image_public_id"}

// surveyTable builds and runs the statements shared by the per-type survey
// tables. Column lists come from the question schema so the SQL always
// matches the record struct tags.
type surveyTable struct {
	db      *sqlx.DB
	name    string
	columns []string
}

func newSurveyTable(db *sqlx.DB, name string, surveyType models.SurveyType) surveyTable {
	schema, _ := models.SchemaFor(surveyType)
	columns := make([]string, 0, len(metaColumns)+len(schema.Questions))
	columns = append(columns, metaColumns...)
	columns = append(columns, schema.Columns()...)
	return surveyTable{db: db, name: name, columns: columns}
}

func (t surveyTable) selectList() string {
	return strings.Join(t.columns, ", ")
}

func (t surveyTable) upsertQuery() string {
	named := make([]string, len(t.columns))
	updates := make([]string, 0, len(t.columns)-1)
	for i, col := range t.columns {
		named[i] = ":" + col
		if col != "user_name" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (user_name) DO UPDATE SET %s RETURNING %s`,
		t.name, t.selectList(), strings.Join(named, ", "), strings.Join(updates, ", "), t.selectList())
}

// upsert inserts or overwrites the row keyed by user_name and scans the
// stored row into dest.
func (t surveyTable) upsert(ctx context.Context, arg interface{}, dest interface{}) error {
	rows, err := t.db.NamedQueryContext(ctx, t.upsertQuery(), arg)
	if err != nil {
		return err
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return rows.StructScan(dest)
}

func (t surveyTable) findByUser(ctx context.Context, dest interface{}, userName string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_name = $1`, t.selectList(), t.name)
	return notFound(t.db.GetContext(ctx, dest, query, userName))
}

func (t surveyTable) list(ctx context.Context, dest interface{}) error {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, user_name ASC`, t.selectList(), t.name)
	return t.db.SelectContext(ctx, dest, query)
}

func (t surveyTable) delete(ctx context.Context, dest interface{}, userName string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_name = $1 RETURNING %s`, t.name, t.selectList())
	return notFound(t.db.GetContext(ctx, dest, query, userName))
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSurveyNotFound
	}
	return err
}
