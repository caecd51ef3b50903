package algo

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"campus-walkways/model"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerReceivesDroppedWalkways(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	BuildGraph([]model.Walkway{
		{ID: "bad", Geometry: []model.Coordinate{model.Pt(0, 0)}},
		{ID: "ok", Geometry: []model.Coordinate{model.Pt(0, 0), model.Pt(1, 0)}},
	}, BuildOptions{})

	out := buf.String()
	if !strings.Contains(out, "id=bad") {
		t.Errorf("expected dropped walkway in log output, got: %s", out)
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}
