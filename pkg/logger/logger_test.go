package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "card listed", Int32("card_id", 7), Bool("shuffle", true))

	out := buf.String()
	for _, want := range []string{"card listed", "card_id=7", "shuffle=true", "source=", "logger_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output %q", want, out)
		}
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf), WithJSON()); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Named("store").With(String("op", "list_cards")).Warn(ctx, "slow query")

	out := buf.String()
	if !strings.Contains(out, `"component":"store"`) {
		t.Errorf("expected component in %q", out)
	}
	if !strings.Contains(out, `"op":"list_cards"`) {
		t.Errorf("expected op in %q", out)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	if err := SetLevelString("error"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "dropped", Error(nil))
	if l.Named("x") == nil {
		t.Fatal("named nop logger is nil")
	}
}
