package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crewforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or change configuration",
	Long: `Show the active configuration, read one key, or set one key in the
user config file.

  crewforge config                          show everything
  crewforge config defaults.model           read one key
  crewforge config defaults.model haiku     set one key

Settable keys: anthropic.api_key, bedrock.enabled, bedrock.region,
bedrock.profile, defaults.model, defaults.max_iterations,
defaults.output_dir, defaults.token_budget, tools.serper_api_key,
tools.http_timeout, tools.user_agent.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		switch len(args) {
		case 0:
			showConfig(cfg)
			return nil
		case 1:
			value, err := configValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		default:
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Printf("Set %s in %s\n", args[0], config.GetUserConfigPath())
			return nil
		}
	},
}

func showConfig(cfg *config.Config) {
	section := color.New(color.Bold)
	dim := color.New(color.Faint)

	section.Println("anthropic")
	fmt.Printf("  api_key: %s\n", maskSecret(cfg.Anthropic.APIKey))

	section.Println("bedrock")
	fmt.Printf("  enabled: %t\n", cfg.Bedrock.Enabled)
	fmt.Printf("  region: %s\n", cfg.Bedrock.Region)
	fmt.Printf("  profile: %s\n", cfg.Bedrock.Profile)

	section.Println("defaults")
	fmt.Printf("  model: %s\n", cfg.Defaults.Model)
	fmt.Printf("  max_iterations: %d\n", cfg.Defaults.MaxIterations)
	fmt.Printf("  output_dir: %s\n", cfg.Defaults.OutputDir)
	fmt.Printf("  token_budget: %d\n", cfg.Defaults.TokenBudget)

	section.Println("tools")
	fmt.Printf("  serper_api_key: %s\n", maskSecret(cfg.Tools.SerperAPIKey))
	fmt.Printf("  http_timeout: %s\n", cfg.Tools.HTTPTimeout)
	fmt.Printf("  user_agent: %s\n", cfg.Tools.UserAgent)

	dim.Printf("\nuser config: %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		dim.Printf("project config: %s\n", project)
	}
}

func configValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return maskSecret(cfg.Anthropic.APIKey), nil
	case "bedrock.enabled":
		return strconv.FormatBool(cfg.Bedrock.Enabled), nil
	case "bedrock.region":
		return cfg.Bedrock.Region, nil
	case "bedrock.profile":
		return cfg.Bedrock.Profile, nil
	case "defaults.model":
		return cfg.Defaults.Model, nil
	case "defaults.max_iterations":
		return strconv.Itoa(cfg.Defaults.MaxIterations), nil
	case "defaults.output_dir":
		return cfg.Defaults.OutputDir, nil
	case "defaults.token_budget":
		return strconv.FormatInt(cfg.Defaults.TokenBudget, 10), nil
	case "tools.serper_api_key":
		return maskSecret(cfg.Tools.SerperAPIKey), nil
	case "tools.http_timeout":
		return cfg.Tools.HTTPTimeout.String(), nil
	case "tools.user_agent":
		return cfg.Tools.UserAgent, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "bedrock.enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false: %w", key, err)
		}
		cfg.Bedrock.Enabled = enabled
	case "bedrock.region":
		cfg.Bedrock.Region = value
	case "bedrock.profile":
		cfg.Bedrock.Profile = value
	case "defaults.model":
		cfg.Defaults.Model = value
	case "defaults.max_iterations":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s wants a positive integer", key)
		}
		cfg.Defaults.MaxIterations = n
	case "defaults.output_dir":
		cfg.Defaults.OutputDir = value
	case "defaults.token_budget":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%s wants a non-negative integer", key)
		}
		cfg.Defaults.TokenBudget = n
	case "tools.serper_api_key":
		cfg.Tools.SerperAPIKey = value
	case "tools.http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s wants a duration like 20s: %w", key, err)
		}
		cfg.Tools.HTTPTimeout = d
	case "tools.user_agent":
		cfg.Tools.UserAgent = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
