package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"rtidesk/internal/rti/models"
)

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// statusesFor returns the statuses op may start from as SQL text values.
func statusesFor(op models.Operation) []string {
	from := models.AllowedFrom(op)
	out := make([]string, len(from))
	for i, st := range from {
		out[i] = string(st)
	}
	return out
}
