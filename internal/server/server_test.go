package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smartdesk/internal/config"
	"smartdesk/internal/db"
	"smartdesk/internal/domain"
	"smartdesk/internal/engine"
	"smartdesk/internal/migrate"
)

func newTestServer(t *testing.T, auth AuthConfig) *httptest.Server {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	srv := httptest.NewServer(New(Config{Engine: e, BasePath: "/v0", Auth: auth}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})

	res, data := doJSON(t, http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title":            "Ship release",
		"priority":         4,
		"reminder_enabled": true,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, data)
	}
	var created domain.Task
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.ID == nil || created.Status != domain.StatusPlanned {
		t.Fatalf("created: %+v", created)
	}
	id := strconv.FormatInt(*created.ID, 10)

	res, data = doJSON(t, http.MethodGet, srv.URL+"/v0/tasks", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status %d: %s", res.StatusCode, data)
	}
	var listed taskList
	if err := json.Unmarshal(data, &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed.Items) != 1 {
		t.Fatalf("list: %+v", listed)
	}

	res, data = doJSON(t, http.MethodPost, srv.URL+"/v0/tasks/"+id+"/complete", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("complete status %d: %s", res.StatusCode, data)
	}
	var completed domain.Task
	if err := json.Unmarshal(data, &completed); err != nil {
		t.Fatalf("unmarshal complete: %v", err)
	}
	if completed.Status != domain.StatusCompleted || completed.ReminderEnabled {
		t.Fatalf("completed: %+v", completed)
	}

	res, data = doJSON(t, http.MethodDelete, srv.URL+"/v0/tasks/"+id, nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d: %s", res.StatusCode, data)
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/v0/tasks/"+id, nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d", res.StatusCode)
	}
}

func TestValidationErrorsMapToBadRequest(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	res, data := doJSON(t, http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "   ",
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d: %s", res.StatusCode, data)
	}
}

func TestBoardEndpoint(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	due := time.Now().Add(2 * time.Hour).Format(domain.TimeLayout)
	res, data := doJSON(t, http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title":  "today task",
		"due_at": due,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, data)
	}

	res, data = doJSON(t, http.MethodGet, srv.URL+"/v0/board", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("board status %d: %s", res.StatusCode, data)
	}
	var board boardResponse
	if err := json.Unmarshal(data, &board); err != nil {
		t.Fatalf("unmarshal board: %v", err)
	}
	if len(board.Columns) != len(domain.Lanes()) {
		t.Fatalf("columns: %d", len(board.Columns))
	}
	if len(board.Lanes["TODAY"]) != 1 {
		t.Fatalf("today lane: %+v", board.Lanes)
	}
}

func TestJWTAuth(t *testing.T) {
	secret := "test-secret"
	srv := newTestServer(t, AuthConfig{JWTSecret: secret})

	res, _ := doJSON(t, http.MethodGet, srv.URL+"/v0/tasks", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status %d", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status %d", res.StatusCode)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "desktop",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	res, data := doJSON(t, http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("valid token status %d: %s", res.StatusCode, data)
	}
}
