// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package ollama provides the HTTP client for the local Ollama API.
package ollama

import (
	"os"
	"path/filepath"
	"syscall"
)

// serverLookupNames are the binary names tried against PATH.
func serverLookupNames() []string {
	return []string{"ollama"}
}

// serverInstallPaths are common Unix/macOS install locations checked
// after PATH.
func serverInstallPaths() []string {
	paths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
	}

	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}

	// macOS application bundle location
	paths = append(paths, "/Applications/Ollama.app/Contents/Resources/ollama")

	return paths
}

// detachedProcAttr puts the server in its own process group so it
// keeps running after fscout exits.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
