package logging

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testStringer string

func (s testStringer) String() string { return string(s) }

func captureConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := console
	console = &buf
	t.Cleanup(func() {
		_ = Close()
		console = orig
		log.SetOutput(os.Stderr)
		SetDebug(false)
	})
	return &buf
}

func TestInitAndLoggingToFile(t *testing.T) {
	buf := captureConsole(t)
	logPath := filepath.Join(t.TempDir(), "nested", "kernbench.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	LogEvent("hello %s", "world")
	LogKernel("run", "linalg3.dot", "native", map[string]int{"runs": 10})
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if !strings.Contains(content, `[RUN] kernel=linalg3.dot backend=native payload={"runs":10}`) {
		t.Fatalf("expected LogKernel content, got: %s", content)
	}
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected console copy, got: %s", buf.String())
	}
}

func TestDebugfGated(t *testing.T) {
	buf := captureConsole(t)
	if err := Init(""); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	Debugf("hidden %d", 1)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug output leaked: %s", buf.String())
	}
	SetDebug(true)
	Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] shown 2") {
		t.Fatalf("expected debug output, got: %s", buf.String())
	}
}

func TestBuildKernelMessageDefaults(t *testing.T) {
	msg := buildKernelMessage(" verify ", " ", "", nil)
	if msg != "[VERIFY] kernel=unknown backend=native" {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestFormatPayloadVariants(t *testing.T) {
	if got := formatPayload(nil); got != "null" {
		t.Fatalf("nil payload: %s", got)
	}
	if got := formatPayload(" "); got != `""` {
		t.Fatalf("empty string payload: %s", got)
	}
	if got := formatPayload([]byte("hi")); got != "hi" {
		t.Fatalf("byte payload: %s", got)
	}
	if got := formatPayload(testStringer("ok")); got != "ok" {
		t.Fatalf("stringer payload: %s", got)
	}
	if got := formatPayload(errors.New("bad")); got != "bad" {
		t.Fatalf("error payload: %s", got)
	}
}
