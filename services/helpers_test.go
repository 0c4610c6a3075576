package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workdash/api"
	"workdash/config"
	"workdash/utils"
)

const (
	mergeRequestsJSON = `[
		{"id": "1", "title": "Fix bug", "author": "zhang", "created_at": "2026-01-21 10:00:00", "additions": 120, "deletions": 30, "status": "merged"},
		{"id": "2", "title": "Add feature", "author": "li", "created_at": "2026-01-25T10:00:00Z", "additions": 45, "deletions": 15, "status": "open"},
		{"id": "3", "title": "Optimize query", "author": "wang", "created_at": "2026-01-30 10:00:00", "additions": 80, "deletions": 60, "status": "merged"}
	]`
	issuesJSON = `[
		{"id": "DTS-1", "title": "Login fails", "severity": "critical", "status": "submitted", "created_at": "2026-01-20T08:00:00Z", "resolved_at": null, "assignee": "wang"},
		{"id": "DTS-2", "title": "Layout broken", "severity": "minor", "status": "resolved", "created_at": "2026-01-18 09:30:00", "resolved_at": "2026-01-19 18:00:00", "assignee": "zhao"}
	]`
	requirementsJSON = `[
		{"id": "REQ-1", "title": "SSO", "version": "v2.1", "test_cycle": "TC-3", "start_date": "2026-01-05", "end_date": "2026-02-01", "status": "in_progress", "owner": "chen"}
	]`
)

// newTrackerServer はログインと各リソースを返すテスト用サーバーを起動します
func newTrackerServer(t *testing.T, overrides map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	handlers := map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		},
		"/api/mrs":          jsonHandler(mergeRequestsJSON),
		"/api/issues":       jsonHandler(issuesJSON),
		"/api/requirements": jsonHandler(requirementsJSON),
		"/api/cases":        jsonHandler(`[]`),
	}
	for path, h := range overrides {
		handlers[path] = h
	}
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func newTestWorkspace(baseURL string) *Workspace {
	cfg := &config.Config{
		BaseURL:              baseURL,
		LoginURL:             "/login",
		Username:             "a",
		Password:             "b",
		MergeRequestsURL:     "/api/mrs",
		IssuesURL:            "/api/issues",
		RequirementsURL:      "/api/requirements",
		TestCasesURL:         "/api/cases",
		RequestTimeout:       2 * time.Second,
		RetryInitialInterval: time.Millisecond,
		MaxConcurrent:        2,
		RequireSessionCookie: true,
	}
	logger := utils.NewLogger("error", "text", io.Discard)
	client := api.NewSessionClient(cfg, api.WithLogger(logger))
	return NewWorkspace(cfg, client, logger)
}
