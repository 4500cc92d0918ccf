// Package server exposes the task engine over HTTP for local UI clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"smartdesk/internal/domain"
	"smartdesk/internal/engine"
	"smartdesk/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string `json:"code" example:"bad_request"`
	Message string `json:"message" example:"title: must not be blank"`
}

type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message}}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error())
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error())
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", err.Error())
}

// New returns an HTTP handler exposing the SmartDesk API.
func New(cfg Config) http.Handler {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(cfg.Auth))
	hcfg := huma.DefaultConfig("SmartDesk API", "0.1.0")
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerTasks(group, cfg.Engine)
	registerBoard(group, cfg.Engine)
	registerNotes(group, cfg.Engine)
	registerEvents(group, cfg.Engine)

	return router
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Status string `json:"status" example:"ok"`
		}
	}, error) {
		out := &struct {
			Body struct {
				Status string `json:"status" example:"ok"`
			}
		}{}
		out.Body.Status = "ok"
		return out, nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body TaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		b := domain.NewTaskBuilder()
		if err := input.Body.apply(b); err != nil {
			return nil, handleError(err)
		}
		task, err := b.Build()
		if err != nil {
			return nil, handleError(err)
		}
		created, err := e.CreateTask(ctx, task)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type        string `query:"type" enum:"TODO,COURSE,ANNIVERSARY,EVENT,"`
		Status      string `query:"status" enum:"PLANNED,IN_PROGRESS,COMPLETED,CANCELLED,"`
		MinPriority int    `query:"min_priority"`
		From        string `query:"from"`
		To          string `query:"to"`
	}) (*struct {
		Body taskList `json:"body"`
	}, error) {
		opts := engine.FilterOptions{}
		if input.Type != "" {
			t := domain.TaskType(input.Type)
			opts.Type = &t
		}
		if input.Status != "" {
			s := domain.TaskStatus(input.Status)
			opts.Status = &s
		}
		if input.MinPriority > 0 {
			p := domain.TaskPriority(input.MinPriority)
			opts.MinimumPriority = &p
		}
		var err error
		if opts.From, err = parseDateQuery(input.From, "from"); err != nil {
			return nil, handleError(err)
		}
		if opts.To, err = parseDateQuery(input.To, "to"); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body taskList `json:"body"`
		}{Body: taskList{Items: e.FilterTasks(ctx, opts)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		task, err := e.GetTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: task}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64       `path:"id"`
		Body TaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		existing, err := e.GetTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		b := existing.ToBuilder()
		if err := input.Body.apply(b); err != nil {
			return nil, handleError(err)
		}
		task, err := b.Build()
		if err != nil {
			return nil, handleError(err)
		}
		updated, err := e.UpdateTask(ctx, task)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: updated}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete task",
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body struct {
			Deleted bool `json:"deleted"`
		}
	}, error) {
		deleted, err := e.DeleteTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Deleted bool `json:"deleted"`
			}
		}{}
		out.Body.Deleted = deleted
		return out, nil
	})

	registerTaskAction(api, "complete-task", "/tasks/{id}/complete", "Mark task completed",
		func(ctx context.Context, id int64) (domain.Task, error) {
			return e.MarkTaskCompleted(ctx, id)
		})
	registerTaskAction(api, "start-task", "/tasks/{id}/start", "Start task",
		func(ctx context.Context, id int64) (domain.Task, error) {
			return e.StartTask(ctx, id)
		})

	huma.Register(api, huma.Operation{
		OperationID: "snooze-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/snooze",
		Summary:     "Snooze task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64 `path:"id"`
		Body struct {
			Minutes int `json:"minutes" minimum:"1"`
		} `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		task, err := e.SnoozeTask(ctx, input.ID, time.Duration(input.Body.Minutes)*time.Minute)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: task}, nil
	})
}

func registerTaskAction(api huma.API, opID, path, summary string, action func(context.Context, int64) (domain.Task, error)) {
	huma.Register(api, huma.Operation{
		OperationID: opID,
		Method:      http.MethodPost,
		Path:        path,
		Summary:     summary,
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		task, err := action(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: task}, nil
	})
}

func registerBoard(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/board",
		Summary:     "Build the dashboard board",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Date         string `query:"date" doc:"Reference date, YYYY-MM-DD; defaults to today"`
		UpcomingDays int    `query:"upcoming_days" default:"7" minimum:"0"`
	}) (*struct {
		Body boardResponse `json:"body"`
	}, error) {
		referenceDate := time.Now()
		if input.Date != "" {
			parsed, err := time.ParseInLocation("2006-01-02", input.Date, time.Local)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid date")
			}
			referenceDate = parsed
		}
		snapshot, err := e.BuildDashboard(ctx, referenceDate, input.UpcomingDays)
		if err != nil {
			return nil, handleError(err)
		}
		resp := boardResponse{
			ReferenceDate: snapshot.ReferenceDate.Format("2006-01-02"),
			Lanes:         map[string][]domain.Task{},
		}
		for _, column := range snapshot.BoardColumns() {
			resp.Columns = append(resp.Columns, boardColumn(column))
			resp.Lanes[string(column.Lane)] = column.Tasks
		}
		return &struct {
			Body boardResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func registerNotes(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-note",
		Method:        http.MethodPost,
		Path:          "/notes",
		Summary:       "Create note",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body NoteRequest `json:"body"`
	}) (*struct {
		Body domain.Note `json:"body"`
	}, error) {
		note := domain.Note{Title: input.Body.Title}
		if input.Body.Content != nil {
			note.Content = *input.Body.Content
		}
		if input.Body.Tag != nil {
			note.Tag = *input.Body.Tag
		}
		created, err := e.CreateNote(ctx, note)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Note `json:"body"`
		}{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-notes",
		Method:      http.MethodGet,
		Path:        "/notes",
		Summary:     "List notes",
	}, func(ctx context.Context, input *struct {
		Tag string `query:"tag"`
	}) (*struct {
		Body noteList `json:"body"`
	}, error) {
		notes, err := e.ListNotes(ctx, input.Tag)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body noteList `json:"body"`
		}{Body: noteList{Items: notes}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-note",
		Method:      http.MethodDelete,
		Path:        "/notes/{id}",
		Summary:     "Delete note",
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body struct {
			Deleted bool `json:"deleted"`
		}
	}, error) {
		deleted, err := e.DeleteNote(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Deleted bool `json:"deleted"`
			}
		}{}
		out.Body.Deleted = deleted
		return out, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent activity",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"50"`
	}) (*struct {
		Body eventList `json:"body"`
	}, error) {
		evts, err := e.Repo.RecentEvents(ctx, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		if evts == nil {
			evts = []domain.Event{}
		}
		return &struct {
			Body eventList `json:"body"`
		}{Body: eventList{Items: evts}}, nil
	})
}

func parseDateQuery(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Reason: "invalid date, expected YYYY-MM-DD"}
	}
	return &parsed, nil
}
