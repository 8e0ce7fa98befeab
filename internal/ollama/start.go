// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama API.
// start.go launches a local Ollama server when one is not already
// running and waits for it to come up. Platform differences (binary
// locations, process attributes) live in start_unix.go and
// start_windows.go.
package ollama

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	// startPollInterval is how often readiness is probed after launch.
	startPollInterval = 500 * time.Millisecond

	// startWaitBudget is how long a freshly launched server gets to
	// become reachable.
	startWaitBudget = 10 * time.Second
)

// findServerExecutable locates the ollama binary: PATH first, then the
// platform's usual install locations.
func findServerExecutable() (string, error) {
	for _, name := range serverLookupNames() {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, p := range serverInstallPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("ollama not found in PATH or common installation directories")
}

// startServer launches `ollama serve` detached from this process and
// polls until it answers or the wait budget runs out.
func (c *Client) startServer(ctx context.Context) error {
	path, err := findServerExecutable()
	if err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "failed to find Ollama executable",
			Cause:   err,
		}
	}

	cmd := exec.Command(path, "serve")
	// Pass the environment through so GPU-related variables reach the server
	cmd.Env = os.Environ()
	cmd.SysProcAttr = detachedProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: fmt.Sprintf("failed to start Ollama (path: %s)", path),
			Cause:   err,
		}
	}

	// Release the process so the server outlives fscout
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}

	deadline := time.Now().Add(startWaitBudget)
	var lastErr error

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return &ClientError{
				Type:    ErrTypeConnection,
				Message: "Ollama startup cancelled",
				Cause:   ctx.Err(),
			}
		case <-time.After(startPollInterval):
		}

		checkCtx, cancel := context.WithTimeout(ctx, startPollInterval)
		lastErr = c.CheckRunning(checkCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
	}

	return &ClientError{
		Type:    ErrTypeConnection,
		Message: fmt.Sprintf("Ollama started but not responding after %s (path: %s)", startWaitBudget, path),
		Cause:   lastErr,
	}
}
