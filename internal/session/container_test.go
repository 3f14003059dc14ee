package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func withRunner(t *testing.T, fn containerRunner) {
	t.Helper()
	prev := runner
	runner = fn
	t.Cleanup(func() { runner = prev })
}

func TestCheckContainerRunning(t *testing.T) {
	withRunner(t, func(args ...string) (string, string, error) {
		return "abc123\n", "", nil
	})
	if !CheckContainerRunning("abc123") {
		t.Error("non-empty ps output means running")
	}

	withRunner(t, func(args ...string) (string, string, error) {
		return "", "", nil
	})
	if CheckContainerRunning("abc123") {
		t.Error("empty ps output means not running")
	}

	if CheckContainerRunning("") {
		t.Error("empty container id is never running")
	}
}

func TestCheckContainerRunningDockerUnavailable(t *testing.T) {
	withRunner(t, func(args ...string) (string, string, error) {
		return "", "", errors.New("docker: command not found")
	})
	if CheckContainerRunning("abc123") {
		t.Error("a failed docker query reads as not running")
	}
}

func TestTerminateContainer(t *testing.T) {
	l := NewLocator(t.TempDir(), zerolog.Nop())

	withRunner(t, func(args ...string) (string, string, error) {
		if len(args) != 2 || args[0] != "stop" || args[1] != "abc123" {
			t.Errorf("unexpected docker args: %v", args)
		}
		return "abc123\n", "", nil
	})
	ok, reason := l.TerminateContainer("abc123")
	if !ok || reason != "Stopped" {
		t.Errorf("got ok=%v reason=%q", ok, reason)
	}
}

func TestTerminateContainerFailureReturnsReason(t *testing.T) {
	l := NewLocator(t.TempDir(), zerolog.Nop())

	withRunner(t, func(args ...string) (string, string, error) {
		return "", "Error response from daemon: no such container", errors.New("exit status 1")
	})
	ok, reason := l.TerminateContainer("abc123")
	if ok {
		t.Error("failed stop must not report success")
	}
	if reason != "Error response from daemon: no such container" {
		t.Errorf("reason must carry stderr, got %q", reason)
	}

	ok, reason = l.TerminateContainer("")
	if ok || reason != "No container id" {
		t.Errorf("empty id: ok=%v reason=%q", ok, reason)
	}
}

func TestStatusReadsContainerFromConfig(t *testing.T) {
	dir := t.TempDir()
	sessionDir := filepath.Join(dir, "2024-03-01")
	if err := os.Mkdir(sessionDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, "config"),
		[]byte(`{"container": "abc123"}`), 0644); err != nil {
		t.Fatal(err)
	}

	withRunner(t, func(args ...string) (string, string, error) {
		return "abc123\n", "", nil
	})

	l := NewLocator(dir, zerolog.Nop())
	status := l.Status("2024-03-01")
	if status.Container != "abc123" || !status.Running {
		t.Errorf("status: %+v", status)
	}
}
