// -- cmd/run.go --
package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/internal/browser"
	"github.com/semact-dev/semact-cli/internal/config"
	"github.com/semact-dev/semact-cli/internal/executor"
	"github.com/semact-dev/semact-cli/internal/llmclient"
	"github.com/semact-dev/semact-cli/internal/manifest"
	"github.com/semact-dev/semact-cli/internal/observability"
	"github.com/semact-dev/semact-cli/internal/orchestrator"
	"github.com/semact-dev/semact-cli/internal/planner"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var (
		manifestPath string
		confirm      bool
		discover     bool
	)

	runCmd := &cobra.Command{
		Use:   "run \"<utterance>\"",
		Short: "Resolves a natural-language utterance and executes it against the target site",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment with the right precedence.
			if err := viper.BindPFlag("runtime.mode", cmd.Flags().Lookup("mode")); err != nil {
				return err
			}
			return viper.BindPFlag("agent.max_attempts", cmd.Flags().Lookup("attempts"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Reload so the flag bindings from PreRunE take effect.
			finalCfg, err := config.Load(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config: %w", err)
			}

			m, err := manifest.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}
			logger.Info("manifest loaded",
				zap.String("site", m.Site.Name),
				zap.Int("actions", len(m.Actions)))

			client, err := llmclient.NewClient(finalCfg.Agent, logger)
			if err != nil {
				return fmt.Errorf("create LLM client: %w", err)
			}
			if !client.IsAvailable(ctx) {
				logger.Warn("LLM backend did not answer the availability probe",
					zap.String("provider", string(finalCfg.Agent.Provider)))
			}
			p := planner.New(logger, client, finalCfg.Agent.MaxAttempts)

			session, err := browser.NewSession(ctx, finalCfg.Browser, logger)
			if err != nil {
				return fmt.Errorf("start browser: %w", err)
			}
			defer session.Close()

			var traces *executor.TraceWriter
			if finalCfg.Runtime.TraceDir != "" {
				traces, err = executor.NewTraceWriter(finalCfg.Runtime.TraceDir, finalCfg.Runtime.KeepTraces)
				if err != nil {
					return fmt.Errorf("open trace dir: %w", err)
				}
			}

			adapter := browser.NewAdapter(session, finalCfg.Runtime, logger, traces)
			orch := orchestrator.New(logger, p, adapter, m)

			resp, err := orch.HandleUtterance(ctx, args[0], orchestrator.Options{
				Confirm:       confirm,
				LiveDiscovery: discover,
			})
			if err != nil {
				return err
			}

			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}

	runCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "agent-actions.json", "path to the site's action manifest")
	runCmd.Flags().BoolVar(&confirm, "confirm", false, "pre-confirm the planned action (consent to a prior confirmation prompt)")
	runCmd.Flags().BoolVar(&discover, "discover", false, "scrape the action catalog from the live page instead of the manifest")
	runCmd.Flags().String("mode", "", "execution mode: auto, ui or direct")
	runCmd.Flags().Int("attempts", 0, "planner retry budget for malformed model output")

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
