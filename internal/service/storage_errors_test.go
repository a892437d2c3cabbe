package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/survey-api/internal/repository"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/objectstore"
)

func TestClassifyStorageError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want *appErrors.Error
	}{
		{"missing row", repository.ErrSurveyNotFound, appErrors.ErrNotFound},
		{"no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), appErrors.ErrNotFound},
		{"missing blob", objectstore.ErrObjectNotFound, appErrors.ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, appErrors.ErrConstraintViolation},
		{"connection failure", &pq.Error{Code: "08006"}, appErrors.ErrStorageUnavailable},
		{"too many connections", &pq.Error{Code: "53300"}, appErrors.ErrStorageUnavailable},
		{"bad conn", driver.ErrBadConn, appErrors.ErrStorageUnavailable},
		{"deadline", context.DeadlineExceeded, appErrors.ErrStorageUnavailable},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, appErrors.ErrStorageUnavailable},
		{"syntax", &pq.Error{Code: "42601"}, appErrors.ErrInternal},
		{"other", errors.New("boom"), appErrors.ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageError(tc.err, "failed to save survey")
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	typed := appErrors.Clone(appErrors.ErrForbidden, "nope")
	assert.Same(t, typed, classifyStorageError(typed, "ignored"))
	assert.NoError(t, classifyStorageError(nil, ""))
}
