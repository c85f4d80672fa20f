// Copyright (C) 2017 ScyllaDB

package httplog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := log.NewLogger(zap.New(core))

	h := RequestLogger(logger, "/ping")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			RequestLoggerSetRequestError(r, errors.New("boom"))
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))

	for _, p := range []string{"/ping", "/jobs", "/fail"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	golden := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.ErrorLevel}
	entries := logs.All()
	if len(entries) != len(golden) {
		t.Fatalf("log entries = %d, expected %d", len(entries), len(golden))
	}
	for i, e := range entries {
		if e.Level != golden[i] {
			t.Errorf("%s level %s, expected %s", e.Message, e.Level, golden[i])
		}
	}
	if _, ok := entries[2].ContextMap()["error"]; !ok {
		t.Error("expected error field")
	}
}
