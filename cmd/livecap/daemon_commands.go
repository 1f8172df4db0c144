package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"livecap/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runKind := statusError
				if resp.Running {
					runKind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", runKind, yesNo(resp.Running), colorize))
				fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, strconv.Itoa(resp.PID), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Sessions", statusInfo, strconv.Itoa(resp.SessionCount), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, resp.DBPath, colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, dep := range resp.Dependencies {
					kind := statusOK
					if !dep.Available {
						kind = statusError
						if dep.Optional {
							kind = statusWarn
						}
					}
					detail := dep.Detail
					if detail == "" {
						detail = dep.Command
					}
					fmt.Fprintln(stdout, renderStatusLine(dep.Name, kind, detail, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newShutdownCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop all sessions and shut down the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Shutdown(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon shutting down")
				return nil
			})
		},
	}
}
