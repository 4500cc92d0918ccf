package repo

import (
	"database/sql"
	"errors"
	"time"

	"smartdesk/internal/domain"
)

// Repo provides task, note and event persistence over a shared connection.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(domain.TimeLayout)
}

func parseTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.TimeLayout, v.String, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
