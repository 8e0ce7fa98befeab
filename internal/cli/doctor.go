// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Health check command handler for the fscout CLI.
//
// Handles the "fscout doctor" command: a series of pass/warn/fail checks
// covering configuration, the workspace root, backend reachability, and
// model availability. Exits non-zero when any check fails so doctor can
// gate scripts.
//
// Command: doctor
//
// Examples:
//   fscout doctor
//   fscout doctor --json
//   fscout doctor && fscout ask "hello"
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/fscout/internal/config"
)

// =============================================================================
// CHECK TYPES
// =============================================================================

// CheckStatus is the outcome of one health check.
type CheckStatus int

const (
	CheckPass CheckStatus = iota
	CheckWarn
	CheckFail
)

// HealthCheck is one named check with its outcome and an optional fix hint.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string
}

var (
	checkPassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	checkWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	checkFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Render formats the check as a single display line.
func (c HealthCheck) Render() string {
	var badge string
	switch c.Status {
	case CheckPass:
		badge = checkPassStyle.Render("[PASS]")
	case CheckWarn:
		badge = checkWarnStyle.Render("[WARN]")
	default:
		badge = checkFailStyle.Render("[FAIL]")
	}

	line := fmt.Sprintf("%s %-18s %s", badge, c.Name, c.Message)
	if c.Fix != "" && c.Status != CheckPass {
		line += "\n       " + DimStyle.Render("fix: "+c.Fix)
	}
	return line
}

// statusWord converts the status to its JSON string form.
func (c HealthCheck) statusWord() string {
	switch c.Status {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	default:
		return "fail"
	}
}

// =============================================================================
// DOCTOR HANDLER
// =============================================================================

// HandleDoctor handles the "doctor" command.
func HandleDoctor(args Args) error {
	checks := runAllChecks(args)

	passed, warned, failed := 0, 0, 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	if args.JSON {
		data := DoctorData{
			Summary: DoctorSummary{
				Passed:  passed,
				Warned:  warned,
				Failed:  failed,
				Healthy: failed == 0,
			},
		}
		for _, check := range checks {
			data.Checks = append(data.Checks, DoctorCheck{
				Name:    check.Name,
				Status:  check.statusWord(),
				Message: check.Message,
				Fix:     check.Fix,
			})
		}
		NewJSONResponse("doctor", data).Print()
	} else {
		separator := strings.Repeat("=", 41)
		fmt.Println()
		fmt.Println(TitleStyle.Render("fscout Doctor"))
		fmt.Println(SeparatorStyle.Render(separator))
		fmt.Println()

		for _, check := range checks {
			fmt.Println(check.Render())
		}

		fmt.Println()
		fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))

		summaryParts := []string{fmt.Sprintf("%d passed", passed)}
		if warned > 0 {
			summaryParts = append(summaryParts, checkWarnStyle.Render(fmt.Sprintf("%d warning", warned)))
		}
		if failed > 0 {
			summaryParts = append(summaryParts, checkFailStyle.Render(fmt.Sprintf("%d failed", failed)))
		}
		fmt.Println(strings.Join(summaryParts, ", "))
		fmt.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}
	return nil
}

// runAllChecks executes every health check in display order.
func runAllChecks(args Args) []HealthCheck {
	var checks []HealthCheck

	// 1. Configuration loads and validates
	cfg := config.Global().Clone()
	applyArgOverrides(cfg, args)
	if err := cfg.Validate(); err != nil {
		checks = append(checks, HealthCheck{
			Name:    "config",
			Status:  CheckFail,
			Message: err.Error(),
			Fix:     "fscout config show; fix the offending key with fscout config set",
		})
	} else {
		checks = append(checks, HealthCheck{
			Name:    "config",
			Status:  CheckPass,
			Message: "configuration valid",
		})
	}

	// 2. Workspace root exists and is readable
	checks = append(checks, checkWorkspace(cfg))

	// 3+. Backend checks depend on the provider
	session, err := NewSession(args)
	if err != nil {
		checks = append(checks, HealthCheck{
			Name:    "backend",
			Status:  CheckFail,
			Message: err.Error(),
		})
		return checks
	}

	if session.Provider == "cloud" {
		checks = append(checks, checkCloud(session)...)
	} else {
		checks = append(checks, checkOllama(session)...)
	}

	return checks
}

// checkWorkspace verifies the confinement root.
func checkWorkspace(cfg *config.Config) HealthCheck {
	root := cfg.WorkspaceRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return HealthCheck{
				Name:    "workspace",
				Status:  CheckFail,
				Message: "cannot determine working directory: " + err.Error(),
			}
		}
		root = cwd
	}

	info, err := os.Stat(root)
	if err != nil {
		return HealthCheck{
			Name:    "workspace",
			Status:  CheckFail,
			Message: fmt.Sprintf("root %s does not exist", root),
			Fix:     "set workspace_root to an existing directory, or run fscout from one",
		}
	}
	if !info.IsDir() {
		return HealthCheck{
			Name:    "workspace",
			Status:  CheckFail,
			Message: fmt.Sprintf("root %s is not a directory", root),
		}
	}
	if _, err := os.ReadDir(root); err != nil {
		return HealthCheck{
			Name:    "workspace",
			Status:  CheckFail,
			Message: fmt.Sprintf("root %s is not readable", root),
			Fix:     "check directory permissions",
		}
	}
	return HealthCheck{
		Name:    "workspace",
		Status:  CheckPass,
		Message: root,
	}
}

// checkOllama verifies the local backend is up and the configured model
// is installed.
func checkOllama(session *Session) []HealthCheck {
	var checks []HealthCheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := session.Ollama.CheckRunning(ctx); err != nil {
		checks = append(checks, HealthCheck{
			Name:    "ollama",
			Status:  CheckFail,
			Message: "not reachable at " + session.Cfg.Ollama.URL,
			Fix:     "start it with: ollama serve",
		})
		return checks
	}
	checks = append(checks, HealthCheck{
		Name:    "ollama",
		Status:  CheckPass,
		Message: "reachable at " + session.Cfg.Ollama.URL,
	})

	models, err := session.Ollama.ListModels(ctx)
	if err != nil {
		checks = append(checks, HealthCheck{
			Name:    "model",
			Status:  CheckWarn,
			Message: "could not list models: " + err.Error(),
		})
		return checks
	}

	// Prefix match so "llama3.2" finds "llama3.2:latest"
	want := session.Model
	found := false
	for _, m := range models {
		if m.Name == want || strings.HasPrefix(m.Name, want+":") {
			found = true
			break
		}
	}
	if found {
		checks = append(checks, HealthCheck{
			Name:    "model",
			Status:  CheckPass,
			Message: want + " installed",
		})
	} else {
		checks = append(checks, HealthCheck{
			Name:    "model",
			Status:  CheckFail,
			Message: want + " not installed",
			Fix:     "ollama pull " + want,
		})
	}

	return checks
}

// checkCloud verifies the hosted backend configuration and reachability.
func checkCloud(session *Session) []HealthCheck {
	var checks []HealthCheck

	if !session.Cloud.IsConfigured() {
		checks = append(checks, HealthCheck{
			Name:    "cloud key",
			Status:  CheckFail,
			Message: "$" + session.Cfg.Cloud.APIKeyEnv + " is not set",
			Fix:     "export " + session.Cfg.Cloud.APIKeyEnv + "=<your key>",
		})
		return checks
	}
	checks = append(checks, HealthCheck{
		Name:    "cloud key",
		Status:  CheckPass,
		Message: session.Cloud.APIKeyMasked(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := session.Cloud.ListModels(ctx); err != nil {
		checks = append(checks, HealthCheck{
			Name:    "cloud api",
			Status:  CheckFail,
			Message: "not reachable: " + err.Error(),
			Fix:     "check cloud.base_url and the API key",
		})
	} else {
		checks = append(checks, HealthCheck{
			Name:    "cloud api",
			Status:  CheckPass,
			Message: "reachable at " + session.Cfg.Cloud.BaseURL,
		})
	}

	return checks
}
