package main

import (
	"errors"
	"testing"

	"github.com/mwiater/kernbench/internal/appconfig"
)

func stubWiring(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origInitLogging := initLogging
	origCloseLogging := closeLogging
	origSetVersion := setVersionInfo
	origExecute := executeCmd
	origExit := exit
	t.Cleanup(func() {
		loadConfig = origLoadConfig
		initLogging = origInitLogging
		closeLogging = origCloseLogging
		setVersionInfo = origSetVersion
		executeCmd = origExecute
		exit = origExit
	})
}

func TestMainWiring(t *testing.T) {
	stubWiring(t)

	calls := struct {
		load    bool
		initLog bool
		close   bool
		version bool
		exec    bool
		exit    bool
	}{}

	loadConfig = func(path string) (appconfig.Config, error) {
		calls.load = true
		if path != "" {
			t.Fatalf("expected empty path, got %q", path)
		}
		return appconfig.Config{LogFile: "test.log"}, nil
	}
	initLogging = func(path string) error {
		calls.initLog = true
		if path != "test.log" {
			t.Fatalf("expected log path test.log, got %q", path)
		}
		return nil
	}
	closeLogging = func() error {
		calls.close = true
		return nil
	}
	setVersionInfo = func(v, c, d string) {
		calls.version = true
		if v == "" || c == "" || d == "" {
			t.Fatalf("expected version info to be set")
		}
	}
	executeCmd = func() error {
		calls.exec = true
		return nil
	}
	exit = func(int) { calls.exit = true }

	main()

	if !calls.load || !calls.initLog || !calls.close || !calls.version || !calls.exec {
		t.Fatalf("expected all wiring calls, got %+v", calls)
	}
	if calls.exit {
		t.Fatal("exit called after a successful command")
	}
}

func TestMainExitsOnCommandError(t *testing.T) {
	stubWiring(t)

	var logPaths []string
	loadConfig = func(string) (appconfig.Config, error) {
		return appconfig.Config{}, errors.New("no configuration file found")
	}
	initLogging = func(path string) error {
		logPaths = append(logPaths, path)
		return nil
	}
	closeLogging = func() error { return nil }
	setVersionInfo = func(string, string, string) {}
	executeCmd = func() error { return errors.New("2 kernel(s) failed") }
	code := -1
	exit = func(c int) { code = c }

	main()

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if len(logPaths) != 1 || logPaths[0] != "kernbench.log" {
		t.Fatalf("log paths = %v", logPaths)
	}
}
