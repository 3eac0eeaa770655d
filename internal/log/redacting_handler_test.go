package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactingHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks sensitive attribute values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("login attempt",
			slog.String("user", "hiroakis"),
			slog.String("password", "hunter2"),
			slog.String("api_key", "sk-12345"),
		)

		out := buf.String()
		if strings.Contains(out, "hunter2") {
			t.Error("password value leaked into log output")
		}
		if strings.Contains(out, "sk-12345") {
			t.Error("api key value leaked into log output")
		}
		if !strings.Contains(out, MaskValue) {
			t.Error("expected masked placeholder in output")
		}
		if !strings.Contains(out, "hiroakis") {
			t.Error("non-sensitive value was masked")
		}
	})

	t.Run("matches keyword-containing keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("engine configured",
			slog.String("proxy_password", "swordfish"),
			slog.String("session_token", "tok-999"),
		)

		out := buf.String()
		if strings.Contains(out, "swordfish") || strings.Contains(out, "tok-999") {
			t.Errorf("keyword-containing keys leaked: %s", out)
		}
	})

	t.Run("bare key-like names are not masked", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("lookup", slog.String("item_key", "B08X4FN2K9"))

		if !strings.Contains(buf.String(), "B08X4FN2K9") {
			t.Error("item_key should not be masked")
		}
	})

	t.Run("masks inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("request",
			slog.Group("engine",
				slog.String("host", "localhost"),
				slog.String("secret", "deep-dark"),
			),
		)

		out := buf.String()
		if strings.Contains(out, "deep-dark") {
			t.Error("grouped secret leaked into log output")
		}
		if !strings.Contains(out, "localhost") {
			t.Error("grouped non-sensitive value was masked")
		}
	})

	t.Run("masks attributes added via With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

		logger.With(slog.String("token", "tok-abc")).Info("ready")

		if strings.Contains(buf.String(), "tok-abc") {
			t.Error("With-bound token leaked into log output")
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses debug records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("hidden")
		logger.Info("visible")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug record emitted at default level")
		}
		if !strings.Contains(out, "visible") {
			t.Error("info record missing at default level")
		}
	})

	t.Run("verbose enables debug records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("now visible")

		if !strings.Contains(buf.String(), "now visible") {
			t.Error("debug record missing in verbose mode")
		}
	})
}
