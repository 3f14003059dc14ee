package session

import (
	"os/exec"
	"strings"

	"lean-dashboard/internal/logging"
	"lean-dashboard/internal/models"
)

// containerRunner abstracts the docker CLI so container control is testable
// without a daemon.
type containerRunner func(args ...string) (stdout string, stderr string, err error)

func dockerRun(args ...string) (string, string, error) {
	cmd := exec.Command("docker", args...)
	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

// runner is swapped out in tests.
var runner containerRunner = dockerRun

// CheckContainerRunning reports whether the engine container is up. Any
// failure to ask reads as not running.
func CheckContainerRunning(containerID string) bool {
	if containerID == "" {
		return false
	}
	stdout, _, err := runner("ps", "-q", "-f", "id="+containerID)
	if err != nil {
		return false
	}
	return strings.TrimSpace(stdout) != ""
}

// TerminateContainer issues a stop to the engine container. Failures come
// back as a human-readable reason, never an error: the operator surface
// must not crash over a control action.
func (l *Locator) TerminateContainer(containerID string) (bool, string) {
	if containerID == "" {
		return false, "No container id"
	}
	_, stderr, err := runner("stop", containerID)
	if err != nil {
		reason := strings.TrimSpace(stderr)
		if reason == "" {
			reason = err.Error()
		}
		logging.LogContainerAction(l.logger, containerID, "stop", false, reason)
		return false, reason
	}
	logging.LogContainerAction(l.logger, containerID, "stop", true, "")
	return true, "Stopped"
}

// Status reports whether a session's engine container is running, from the
// container id recorded in its config file.
func (l *Locator) Status(sessionID string) models.SessionStatus {
	status := models.SessionStatus{Session: sessionID}
	path := l.Resolve(sessionID)
	if path == "" {
		return status
	}
	cfg, out := l.parser.LoadConfig(path)
	if !out.IsOK() {
		return status
	}
	status.Container = cfg.Container
	status.Running = CheckContainerRunning(cfg.Container)
	return status
}

// StatusAll reports the container status of every session.
func (l *Locator) StatusAll() []models.SessionStatus {
	sessions := l.ListSessions()
	statuses := make([]models.SessionStatus, 0, len(sessions))
	for _, session := range sessions {
		statuses = append(statuses, l.Status(session))
	}
	return statuses
}
