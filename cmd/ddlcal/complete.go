package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ddlcal/internal/calendar"
	"ddlcal/internal/complete"
	"ddlcal/internal/model"
)

var completeOpts struct {
	configPath string
	baseURL    string
	csrfToken  string
}

var completeCmd = &cobra.Command{
	Use:   "complete ID",
	Short: "Mark a deadline complete in the host application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(completeOpts.configPath)
		if err != nil {
			return err
		}
		baseURL := conf.Completion.BaseURL
		if completeOpts.baseURL != "" {
			baseURL = completeOpts.baseURL
		}
		if baseURL == "" {
			return errors.New("no completion base URL: set completion.base_url or --base-url")
		}
		token := conf.Completion.CSRFToken
		if completeOpts.csrfToken != "" {
			token = completeOpts.csrfToken
		}

		id := model.ID(args[0])
		if !id.Valid() {
			return fmt.Errorf("invalid deadline id %q", args[0])
		}
		client := complete.NewFormClient(baseURL, token, nil)
		if err := calendar.RequestCompletion(cmd.Context(), client, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n", id)
		return nil
	},
}

func init() {
	addConfigFlag(completeCmd.Flags(), &completeOpts.configPath, "")
	completeCmd.Flags().StringVar(&completeOpts.baseURL, "base-url", "", "Host application base URL")
	completeCmd.Flags().StringVar(&completeOpts.csrfToken, "csrf-token", "", "Anti-forgery token to send")
}
