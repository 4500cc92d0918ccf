package engine

import (
	"context"
	"strings"

	"smartdesk/internal/domain"
)

// CreateNote persists a note, defaulting its date to now.
func (e Engine) CreateNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	if strings.TrimSpace(note.Title) == "" {
		return domain.Note{}, domain.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if note.Date.IsZero() {
		note.Date = e.now()
	}
	id, err := e.Repo.InsertNote(ctx, note)
	if err != nil {
		return domain.Note{}, err
	}
	note.ID = &id
	return note, nil
}

func (e Engine) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	return e.Repo.GetNote(ctx, id)
}

func (e Engine) ListNotes(ctx context.Context, tag string) ([]domain.Note, error) {
	notes, err := e.Repo.ListNotes(ctx, tag)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (e Engine) DeleteNote(ctx context.Context, id int64) (bool, error) {
	affected, err := e.Repo.DeleteNote(ctx, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
