package repo

import (
	"context"
	"database/sql"

	"smartdesk/internal/domain"
)

const selectNotesSQL = `SELECT id, title, content, tag, date FROM notes`

func scanNote(row rowScanner) (domain.Note, error) {
	var (
		n            domain.Note
		id           int64
		content, tag sql.NullString
		date         string
	)
	err := row.Scan(&id, &n.Title, &content, &tag, &date)
	if err == sql.ErrNoRows {
		return n, ErrNotFound
	}
	if err != nil {
		return n, err
	}
	n.ID = &id
	if content.Valid {
		n.Content = content.String
	}
	if tag.Valid {
		n.Tag = tag.String
	}
	parsed, err := parseTime(sql.NullString{String: date, Valid: true})
	if err != nil {
		return n, err
	}
	if parsed != nil {
		n.Date = *parsed
	}
	return n, nil
}

func (r Repo) InsertNote(ctx context.Context, n domain.Note) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notes(title, content, tag, date) VALUES (?,?,?,?)`,
		n.Title, nullable(n.Content), nullable(n.Tag), n.Date.Format(domain.TimeLayout))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	return scanNote(r.DB.QueryRowContext(ctx, selectNotesSQL+` WHERE id=?`, id))
}

// ListNotes returns notes newest first, optionally restricted to a tag.
func (r Repo) ListNotes(ctx context.Context, tag string) ([]domain.Note, error) {
	query := selectNotesSQL + ` ORDER BY date DESC`
	args := []any{}
	if tag != "" {
		query = selectNotesSQL + ` WHERE tag=? ORDER BY date DESC`
		args = append(args, tag)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r Repo) DeleteNote(ctx context.Context, id int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
