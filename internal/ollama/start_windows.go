// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package ollama provides the HTTP client for the local Ollama API.
package ollama

import (
	"os"
	"path/filepath"
	"syscall"
)

// Windows-specific process creation flags.
const (
	// createNoWindow prevents a console window from being created
	createNoWindow = 0x08000000
	// detachedProcess detaches the child from our console
	detachedProcess = 0x00000008
)

// serverLookupNames are the binary names tried against PATH.
func serverLookupNames() []string {
	return []string{"ollama.exe", "ollama"}
}

// serverInstallPaths are common Windows install locations checked after
// PATH.
func serverInstallPaths() []string {
	var paths []string

	// User install location: %LOCALAPPDATA%\Programs\Ollama\ollama.exe
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		paths = append(paths, filepath.Join(localAppData, "Programs", "Ollama", "ollama.exe"))
	}

	paths = append(paths,
		`C:\Program Files\Ollama\ollama.exe`,
		`C:\Program Files (x86)\Ollama\ollama.exe`,
	)

	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		paths = append(paths,
			filepath.Join(userProfile, "Ollama", "ollama.exe"),
			filepath.Join(userProfile, ".ollama", "ollama.exe"),
		)
	}

	return paths
}

// detachedProcAttr runs the server without a console window, detached
// from ours so it keeps running after fscout exits.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: createNoWindow | detachedProcess,
		HideWindow:    true,
	}
}
