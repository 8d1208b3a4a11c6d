package googleDriveApi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/akraev/folioterm/config"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) intAttr(msg, key string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range h.records {
		if r.Message != msg {
			continue
		}
		found := 0
		ok := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				found = int(a.Value.Int64())
				ok = true
				return false
			}
			return true
		})
		if ok {
			return found, true
		}
	}
	return 0, false
}

func TestDeleteOldReportsCountsOnlySuccessfulDeletes(t *testing.T) {
	ctx := t.Context()

	stale := "2020-01-01T00:00:00Z"
	fresh := time.Now().Format(time.RFC3339)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"files":[
			{"id":"old-ok","createdTime":"%s"},
			{"id":"old-broken","createdTime":"%s"},
			{"id":"recent","createdTime":"%s"}
		]}`, stale, stale, fresh)
	})
	mux.HandleFunc("DELETE /files/trash", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	deleted := map[string]bool{}
	mux.HandleFunc("DELETE /files/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "old-broken" {
			http.Error(w, `{"error":{"message":"backend exploded"}}`, http.StatusInternalServerError)
			return
		}
		deleted[id] = true
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := drive.NewService(ctx,
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("drive.NewService() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.Report.RetentionAge = 720 * time.Hour

	handler := &captureHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(handler))
	t.Cleanup(func() { slog.SetDefault(prev) })

	api := &GoogleDriveApi{srv: srv, cfg: cfg}
	if err := api.DeleteOldReports(ctx); err != nil {
		t.Fatalf("DeleteOldReports() error = %v", err)
	}

	if !deleted["old-ok"] {
		t.Error("stale file old-ok was not deleted")
	}
	if deleted["recent"] {
		t.Error("recent file was deleted")
	}

	got, ok := handler.intAttr("delete old reports done", "deletedFiles")
	if !ok {
		t.Fatal("completion log record not found")
	}
	if got != 1 {
		t.Fatalf("deletedFiles = %d, want 1 (failed delete must not be counted)", got)
	}
}
