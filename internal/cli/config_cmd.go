// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for the fscout CLI.
//
// Handles the "fscout config" command group: showing, reading, and
// writing configuration values. API keys are never stored or printed;
// only the name of the environment variable that holds them.
//
// Commands: config show, config get, config set, config path, config keys
//
// Examples:
//   fscout config show
//   fscout config get ollama.model
//   fscout config set provider cloud
//   fscout config set tools.read_max_chars 8000
//   fscout config path
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/fscout/internal/config"
)

// HandleConfig routes config subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "get":
		return handleConfigGet(args)
	case "set":
		return handleConfigSet(args)
	case "path":
		return handleConfigPath(args)
	case "keys":
		return handleConfigKeys(args)
	default:
		return NewValidationError("subcommand", args.Subcommand,
			"expected show, get, set, path, or keys")
	}
}

// handleConfigShow displays the effective configuration.
func handleConfigShow(args Args) error {
	cfg := config.Global().Clone()
	applyArgOverrides(cfg, args)

	path, _ := config.ConfigPathTOML()

	if args.JSON {
		data := ConfigShowData{
			Provider:      cfg.Provider,
			WorkspaceRoot: cfg.WorkspaceRoot,
			MaxIterations: cfg.MaxIterations,
			Path:          path,
		}
		data.Ollama.URL = cfg.Ollama.URL
		data.Ollama.Model = cfg.Ollama.Model
		data.Cloud.BaseURL = cfg.Cloud.BaseURL
		data.Cloud.Model = cfg.Cloud.Model
		data.Cloud.APIKeyEnv = cfg.Cloud.APIKeyEnv
		data.Cloud.KeySet = cfg.CloudAPIKey() != ""
		data.Tools.ReadMaxChars = cfg.Tools.ReadMaxChars
		data.Tools.SummarizeMaxChars = cfg.Tools.SummarizeMaxChars
		data.Tools.ListShowLimit = cfg.Tools.ListShowLimit
		data.Tools.TimeoutSecs = cfg.Tools.TimeoutSecs
		NewJSONResponse("config show", data).Print()
		return nil
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("fscout Configuration"))
	fmt.Println(RenderSeparator(41))
	fmt.Println()

	fmt.Println(SectionStyle.Render("General"))
	fmt.Println(RenderLabel("provider") + ValueStyle.Render(cfg.Provider))
	root := cfg.WorkspaceRoot
	if root == "" {
		root = DimStyle.Render("(current directory)")
	}
	fmt.Println(RenderLabel("workspace_root") + ValueStyle.Render(root))
	fmt.Println(RenderLabel("max_iterations") + ValueStyle.Render(strconv.Itoa(cfg.MaxIterations)))
	fmt.Println()

	fmt.Println(SectionStyle.Render("Ollama"))
	fmt.Println(RenderLabel("url") + ValueStyle.Render(cfg.Ollama.URL))
	fmt.Println(RenderLabel("model") + ValueStyle.Render(cfg.Ollama.Model))
	fmt.Println()

	fmt.Println(SectionStyle.Render("Cloud"))
	fmt.Println(RenderLabel("base_url") + ValueStyle.Render(cfg.Cloud.BaseURL))
	fmt.Println(RenderLabel("model") + ValueStyle.Render(cfg.Cloud.Model))
	fmt.Println(RenderLabel("api_key_env") + ValueStyle.Render(cfg.Cloud.APIKeyEnv))
	if cfg.CloudAPIKey() != "" {
		fmt.Println(RenderLabel("api_key") + SuccessStyle.Render("set"))
	} else {
		fmt.Println(RenderLabel("api_key") + WarningStyle.Render("not set"))
	}
	fmt.Println()

	fmt.Println(SectionStyle.Render("Tools"))
	fmt.Println(RenderLabel("read_max_chars") + ValueStyle.Render(formatNumber(cfg.Tools.ReadMaxChars)))
	fmt.Println(RenderLabel("summarize_max_chars") + ValueStyle.Render(formatNumber(cfg.Tools.SummarizeMaxChars)))
	fmt.Println(RenderLabel("list_show_limit") + ValueStyle.Render(strconv.Itoa(cfg.Tools.ListShowLimit)))
	fmt.Println(RenderLabel("timeout_secs") + ValueStyle.Render(strconv.Itoa(cfg.Tools.TimeoutSecs)))
	fmt.Println()

	if path != "" {
		fmt.Println(DimStyle.Render("config file: " + path))
		fmt.Println()
	}
	return nil
}

// handleConfigGet prints a single value by dot-notation key.
func handleConfigGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "fscout config get <key>")
	}

	cfg := config.Global()
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		if suggestion := SuggestClosest(args.ConfigKey, config.GetAllKeys()); suggestion != "" {
			StderrPrintln(DimStyle.Render("did you mean: " + suggestion))
		}
		return NewNotFoundError("config key", args.ConfigKey)
	}

	if args.JSON {
		NewJSONResponse("config get", map[string]interface{}{
			"key":   args.ConfigKey,
			"value": value,
		}).Print()
		return nil
	}

	fmt.Println(value)
	return nil
}

// handleConfigSet writes a single value and persists the file.
func handleConfigSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "fscout config set <key> <value>")
	}

	// Refuse anything that looks like a raw credential. Keys live in the
	// environment; config only names the variable.
	keyLower := strings.ToLower(args.ConfigKey)
	if strings.HasSuffix(keyLower, "api_key") || strings.HasSuffix(keyLower, "apikey") {
		return NewValidationError("key", args.ConfigKey,
			"API keys are read from the environment; set cloud.api_key_env to the variable name instead")
	}

	cfg := config.Global().Clone()
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return WrapError(err, fmt.Sprintf("failed to set %s", args.ConfigKey))
	}
	if err := cfg.Validate(); err != nil {
		return WrapError(err, "new value failed validation")
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "failed to save config")
	}
	config.SetGlobal(cfg)

	if args.JSON {
		NewJSONResponse("config set", map[string]interface{}{
			"key":   args.ConfigKey,
			"value": args.ConfigVal,
		}).Print()
		return nil
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, args.ConfigVal)
	return nil
}

// handleConfigPath prints the config file location.
func handleConfigPath(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return WrapError(err, "failed to determine config path")
	}

	if args.JSON {
		NewJSONResponse("config path", map[string]string{"path": path}).Print()
		return nil
	}

	fmt.Println(path)
	return nil
}

// handleConfigKeys lists every settable key.
func handleConfigKeys(args Args) error {
	keys := config.GetAllKeys()

	if args.JSON {
		NewJSONResponse("config keys", map[string][]string{"keys": keys}).Print()
		return nil
	}

	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}
