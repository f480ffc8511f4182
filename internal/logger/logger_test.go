package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/domain"
)

func TestLogErrorFirstEmissionIncludesKindAndCause(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	err := domain.Newf(domain.KindHighGasFee, "base fee too high")
	LogError(log, "submission failed", err)

	out := buf.String()
	if !strings.Contains(out, "HighGasFee") {
		t.Fatalf("expected kind in first emission, got: %s", out)
	}
	if !strings.Contains(out, "base fee too high") {
		t.Fatalf("expected cause message in first emission, got: %s", out)
	}
}

func TestLogErrorRepeatEmissionIsIDOnly(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	err := domain.Newf(domain.KindHighGasFee, "base fee too high")
	LogError(log, "submission failed", err)
	firstLen := buf.Len()
	buf.Reset()

	LogError(log, "submission failed", err)
	repeat := buf.String()

	if strings.Contains(repeat, "base fee too high") {
		t.Fatalf("expected repeat emission to omit the cause, got: %s", repeat)
	}
	if !strings.Contains(repeat, "error_id") {
		t.Fatalf("expected repeat emission to carry the error id, got: %s", repeat)
	}
	_ = firstLen
}

func TestLogErrorNonDomainErrorLoggedDirectly(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	LogError(log, "boom", errors.New("plain error"))

	if !strings.Contains(buf.String(), "plain error") {
		t.Fatalf("expected plain error message to be logged, got: %s", buf.String())
	}
}
