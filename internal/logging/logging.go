package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool

	// console receives every log line. Reports go to stdout, so logs stay
	// on stderr to keep piped JSON clean.
	console io.Writer = os.Stderr
)

// Init routes the standard logger to the console and, when logPath is set,
// appends to that file as well.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	writers := []io.Writer{console}
	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close detaches and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(console)
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug toggles Debugf output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...any) {
	mu.Lock()
	on := debug
	mu.Unlock()
	if !on {
		return
	}
	log.Println("[DEBUG] " + fmt.Sprintf(format, args...))
}

// LogKernel records one phase of a kernel's lifecycle, e.g.
// "[VERIFY] kernel=linalg3.dot backend=native payload={...}".
func LogKernel(phase, kernel, backend string, payload any) {
	log.Println(buildKernelMessage(phase, kernel, backend, payload))
}

func buildKernelMessage(phase, kernel, backend string, payload any) string {
	p := strings.ToUpper(strings.TrimSpace(phase))
	kernelValue := strings.TrimSpace(kernel)
	if kernelValue == "" {
		kernelValue = "unknown"
	}
	backendValue := strings.TrimSpace(backend)
	if backendValue == "" {
		backendValue = "native"
	}
	parts := []string{
		fmt.Sprintf("[%s]", p),
		fmt.Sprintf("kernel=%s", kernelValue),
		fmt.Sprintf("backend=%s", backendValue),
	}
	if payload != nil {
		parts = append(parts, fmt.Sprintf("payload=%s", formatPayload(payload)))
	}
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
