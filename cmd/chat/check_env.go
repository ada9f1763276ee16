package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/set-night/chatfeedback/internal/service"
)

func newCheckEnvCommand() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "check-env",
		Short: "Check the env file and API key without starting a chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat(envFile); err != nil {
				fmt.Fprintf(out, "env file:  %s (not found, using process environment)\n", envFile)
			} else {
				fmt.Fprintf(out, "env file:  %s\n", envFile)
			}

			cfg, err := loadConfig(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "api key:   %s\n", maskKey(cfg.APIKey))
			fmt.Fprintf(out, "model:     %s\n", cfg.Model)
			fmt.Fprintf(out, "store:     %s\n", cfg.Store)
			fmt.Fprintf(out, "telegram:  %t\n", cfg.TelegramEnabled())

			if !remote {
				return nil
			}
			backend, err := service.NewOpenRouterService(cfg.APIKey, cfg.BaseURL)
			if err != nil {
				return err
			}
			model, err := backend.GetModel(cmd.Context(), cfg.Model)
			if err != nil {
				fmt.Fprintf(out, "remote:    %v\n", err)
				return err
			}
			fmt.Fprintf(out, "remote:    ok, %s, context %d, $%.2f/$%.2f per 1M tokens\n",
				model.Name, model.ContextLength, model.PromptPrice, model.CompletionPrice)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Also look up the configured model on OpenRouter")
	return cmd
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
