package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"

	"github.com/noah-isme/survey-api/internal/repository"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
	"github.com/noah-isme/survey-api/pkg/objectstore"
)

// classifyStorageError maps a store failure onto the public error kinds.
// Errors that are already typed pass through unchanged.
func classifyStorageError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case isNotFound(err):
		return appErrors.WrapAs(err, appErrors.ErrNotFound, "survey not found")
	case isConstraintViolation(err):
		return appErrors.WrapAs(err, appErrors.ErrConstraintViolation, message)
	case isUnavailable(err):
		return appErrors.WrapAs(err, appErrors.ErrStorageUnavailable, message)
	default:
		return appErrors.WrapAs(err, appErrors.ErrInternal, message)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrSurveyNotFound) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, objectstore.ErrObjectNotFound)
}

func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Class() == "23"
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
