package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"livecap/internal/config"
	"livecap/internal/ipc"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var language string
	var model string
	var sink string
	var chunkSeconds int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "start <source>",
		Short: "Start a live captioning session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := strings.TrimSpace(args[0])
			if source == "" {
				return fmt.Errorf("source is required")
			}
			if !isStreamURL(source) {
				expanded, err := config.ExpandPath(source)
				if err != nil {
					return fmt.Errorf("resolve source path: %w", err)
				}
				source = expanded
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionCreate(ipc.SessionRequest{
					Source:       source,
					Language:     language,
					Model:        model,
					ChunkSeconds: chunkSeconds,
					Sink:         sink,
				})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp.Session)
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Session %s started\n", resp.Session.ID)
				if resp.Session.SinkPath != "" {
					fmt.Fprintf(stdout, "Output: %s\n", resp.Session.SinkPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Spoken language hint (BCP-47 tag or name, \"auto\" to detect)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Whisper model size override")
	cmd.Flags().StringVar(&sink, "sink", "", "Output sink kind (ts_file, ts_pipe, frag_mp4, hls, http_push)")
	cmd.Flags().IntVar(&chunkSeconds, "chunk-seconds", 0, "Audio chunk duration override in seconds")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

// isStreamURL reports whether the source should be passed to ffmpeg
// untouched instead of being expanded as a local path.
func isStreamURL(source string) bool {
	for _, scheme := range []string{"rtmp://", "rtsp://", "srt://", "udp://", "http://", "https://"} {
		if strings.HasPrefix(source, scheme) {
			return true
		}
	}
	return false
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live and archived sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionList()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(stdout, "No sessions")
					return nil
				}
				rows := make([][]string, 0, len(resp.Sessions))
				for _, view := range resp.Sessions {
					rows = append(rows, []string{
						view.ID,
						view.Source,
						view.Status,
						strconv.Itoa(view.CueCount),
						view.SinkKind,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Source", "Status", "Cues", "Sink"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show details and recent cues for one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDescribe(args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp.Session)
				}
				printSessionDetail(cmd, resp.Session)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}

func printSessionDetail(cmd *cobra.Command, view ipc.SessionView) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Session "+view.ID, colorize) {
		fmt.Fprintln(stdout, line)
	}
	statusDetail := view.Status
	if view.Error != "" {
		statusDetail += ": " + view.Error
	}
	fmt.Fprintln(stdout, renderStatusLine("Status", statusKindForSession(view.Status), statusDetail, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Source", statusInfo, view.Source, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Sink", statusInfo, sinkDetail(view), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Cues", statusInfo, strconv.Itoa(view.CueCount), colorize))

	if len(view.RecentCues) == 0 {
		return
	}
	fmt.Fprintln(stdout)
	rows := make([][]string, 0, len(view.RecentCues))
	for _, cue := range view.RecentCues {
		rows = append(rows, []string{
			strconv.Itoa(cue.Index),
			cue.StartTimecode,
			cue.EndTimecode,
			cue.Text,
		})
	}
	fmt.Fprintln(stdout, renderTable(
		[]string{"#", "Start", "End", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
}

func sinkDetail(view ipc.SessionView) string {
	if view.SinkPath == "" {
		return view.SinkKind
	}
	return view.SinkKind + " " + view.SinkPath
}

func statusKindForSession(status string) statusKind {
	switch status {
	case "running":
		return statusOK
	case "error":
		return statusError
	case "stopped":
		return statusInfo
	default:
		return statusWarn
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <session-id>",
		Short: "Stop a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionStop(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s stopped\n", args[0])
				return nil
			})
		},
	}
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <session-id>",
		Short: "Stop a session and remove its scratch output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionCleanup(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s cleaned up\n", args[0])
				return nil
			})
		},
	}
}
