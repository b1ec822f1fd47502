// -- cmd/manifest.go --
package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/internal/manifest"
	"github.com/semact-dev/semact-cli/internal/observability"
)

// newManifestCmd groups manifest tooling under `semact manifest`.
func newManifestCmd() *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect and validate site action manifests",
	}
	manifestCmd.AddCommand(newManifestValidateCmd())
	manifestCmd.AddCommand(newManifestCatalogCmd())
	return manifestCmd
}

// newManifestValidateCmd checks a manifest file for structural problems.
func newManifestValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validates a manifest file and reports every problem found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			m, err := manifest.Load(args[0])
			if err != nil {
				return fmt.Errorf("manifest %s: %w", args[0], err)
			}

			logger.Info("manifest is valid",
				zap.String("file", args[0]),
				zap.String("site", m.Site.Name),
				zap.Int("actions", len(m.Actions)))
			fmt.Fprintf(os.Stdout, "%s: valid (%d actions)\n", args[0], len(m.Actions))
			return nil
		},
	}
}

// newManifestCatalogCmd prints the planner-facing catalog a manifest
// produces, which is what the model actually sees.
func newManifestCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog <file>",
		Short: "Prints the action catalog derived from a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return fmt.Errorf("manifest %s: %w", args[0], err)
			}

			catalog := manifest.Catalog(m, m.Site.Origin)
			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(catalog, "", "  ")
			if err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newManifestCmd())
}
