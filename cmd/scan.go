package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Winify/webdriverio-mcp/internal/driver/webdriver"
	"github.com/Winify/webdriverio-mcp/internal/locator"
	"github.com/Winify/webdriverio-mcp/internal/observability"
	"github.com/Winify/webdriverio-mcp/internal/scan"
)

// newScanCmd creates the `scan` command. It either attaches to a running
// WebDriver session (--session) or scans a saved page-source dump (--source),
// and prints the resulting records as JSON.
func newScanCmd() *cobra.Command {
	var (
		serverURL  string
		sessionID  string
		sourceFile string
		platform   string
		batchSize  int
		structural bool
	)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the current UI and synthesize element locators",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			if platform == "" {
				platform = cfg.Scan.Platform
			}
			plat, err := locator.ParsePlatform(platform)
			if err != nil {
				return err
			}

			if batchSize <= 0 {
				batchSize = cfg.Scan.BatchSize
			}
			scanCfg := scan.Config{
				BatchSize:     batchSize,
				MaxAlternates: cfg.Scan.MaxAlternates,
				TextCeiling:   cfg.Scan.TextCeiling,
			}
			opts := []scan.Option{scan.WithConfig(scanCfg), scan.WithLogger(logger)}
			if structural {
				opts = append(opts, scan.WithVerifier(locator.StructuralVerifier{}))
			}

			var records []scan.Record
			switch {
			case sourceFile != "":
				raw, err := os.ReadFile(sourceFile)
				if err != nil {
					return fmt.Errorf("read page source dump: %w", err)
				}
				scanner := scan.New(nil, opts...)
				records, err = scanner.FromSnapshot(string(raw), plat, locator.DefaultPolicy(plat))
				if err != nil {
					return err
				}
			case sessionID != "":
				if serverURL == "" {
					serverURL = cfg.Driver.ServerURL
				}
				client := webdriver.Attach(webdriver.Options{
					ServerURL:         serverURL,
					Timeout:           cfg.Driver.RequestTimeout,
					RequestsPerSecond: cfg.Driver.RequestsPerSecond,
					Logger:            logger,
				}, sessionID, plat.String())
				scanner := scan.New(client, opts...)
				records, err = scanner.Scan(cmd.Context())
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("either --session or --source is required")
			}

			logger.Info("emitting records", zap.Int("count", len(records)))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}

	scanCmd.Flags().StringVar(&serverURL, "server", "", "WebDriver server URL (default from config)")
	scanCmd.Flags().StringVar(&sessionID, "session", "", "existing WebDriver session ID to attach to")
	scanCmd.Flags().StringVar(&sourceFile, "source", "", "scan a saved page-source XML dump instead of a live session")
	scanCmd.Flags().StringVar(&platform, "platform", "", "target platform: android or ios (default from config)")
	scanCmd.Flags().IntVar(&batchSize, "batch-size", 0, "elements processed concurrently per batch (default from config)")
	scanCmd.Flags().BoolVar(&structural, "structural-uniqueness", false, "verify selector uniqueness by re-parsing the snapshot instead of text matching")
	return scanCmd
}

func init() {
	rootCmd.AddCommand(newScanCmd())
}
