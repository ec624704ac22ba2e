package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/dracve"
	"github.com/agentstation/dracve/internal/collaborator/gemini"
	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/reconcile"
	"github.com/agentstation/dracve/pkg/report"
	"github.com/agentstation/dracve/pkg/tabular"
)

// NewReconcileCommand creates the reconcile command.
func (a *App) NewReconcileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile supply-chain data exports",
		Long: `Reconcile ingests the provided delimited-text exports, detects
cross-source inconsistencies, consolidates records under a recency-wins
policy, and computes disruption statistics. With --correct it also performs
the AI correction round trip and writes the corrected view.`,
		RunE: a.runReconcile,
	}

	cmd.Flags().StringVar(&a.config.LegacyFile, "legacy", "", "legacy system export (required)")
	cmd.Flags().StringVar(&a.config.SpreadsheetFile, "spreadsheet", "", "manually maintained spreadsheet (required)")
	cmd.Flags().StringVar(&a.config.SupplierFile, "supplier", "", "supplier feed (required)")
	cmd.Flags().StringVar(&a.config.ReverseLogisticsFile, "returns", "", "reverse-logistics feed (optional)")
	cmd.Flags().StringVar(&a.config.HistoricalFile, "historical", "", "historical backup (optional)")
	cmd.Flags().StringVar(&a.config.Delimiter, "delimiter", a.config.Delimiter, "field delimiter")
	cmd.Flags().StringVar(&a.config.OutputDir, "out", a.config.OutputDir, "directory for exported artifacts")
	cmd.Flags().StringVar(&a.config.Overrides, "overrides", "", "YAML file of manual overrides keyed by item_id")
	cmd.Flags().BoolVar(&a.config.Correct, "correct", false, "perform the AI correction round trip")
	cmd.Flags().StringVar(&a.config.Model, "model", a.config.Model, "collaborator model name")

	_ = cmd.MarkFlagRequired("legacy")
	_ = cmd.MarkFlagRequired("spreadsheet")
	_ = cmd.MarkFlagRequired("supplier")

	return cmd
}

func (a *App) runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := a.logger

	opts := []dracve.Option{dracve.WithLogger(log)}
	if a.config.Delimiter != "" {
		opts = append(opts, dracve.WithDelimiter([]rune(a.config.Delimiter)[0]))
	}
	if a.config.Correct {
		corrector, err := gemini.New(ctx, a.config.APIKey, a.config.Model)
		if err != nil {
			return err
		}
		opts = append(opts, dracve.WithCorrector(corrector))
	}

	engine, err := dracve.New(opts...)
	if err != nil {
		return err
	}

	payloads, closers, err := a.openPayloads()
	defer closers.close()
	if err != nil {
		return err
	}

	result, err := engine.Reconcile(ctx, payloads)
	if err != nil {
		return err
	}

	for _, inc := range result.Inconsistencies {
		log.Warn().Str("type", inc.Type).Int("rows", len(inc.Details)).Msg("Inconsistency detected")
	}
	log.Info().
		Float64("missing_inventory_pct", result.Disruption.MissingInventoryData.Percentage).
		Float64("missing_order_pct", result.Disruption.MissingOrderData.Percentage).
		Int("in_transit", len(result.Disruption.InTransitOrders)).
		Msg("Disruption analysis")

	if a.config.Correct {
		corrected, err := engine.RequestCorrections(ctx)
		switch {
		case errors.IsCollaboratorUnavailable(err):
			log.Error().Err(err).Msg("Correction service unavailable; keeping local results")
		case errors.IsContractViolation(err):
			log.Error().Err(err).Msg("Correction service returned a bad response; keeping local results")
		case err != nil:
			return err
		default:
			fmt.Fprintln(cmd.OutOrStdout(), report.Render(corrected.Report))
		}
	}

	if a.config.Overrides != "" {
		if err := a.applyOverrides(engine); err != nil {
			return err
		}
	}

	if a.config.OutputDir != "" {
		return a.export(engine)
	}
	return nil
}

// applyOverrides loads the manual override file and records each entry on
// the engine.
func (a *App) applyOverrides(engine dracve.Engine) error {
	data, err := os.ReadFile(a.config.Overrides)
	if err != nil {
		return errors.WrapIO("read", a.config.Overrides, err)
	}
	var overrides map[string]reconcile.Override
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return errors.NewInputError("overrides", "invalid override file", err)
	}
	for itemID, o := range overrides {
		engine.SetOverride(itemID, o)
	}
	a.logger.Info().Int("overrides", len(overrides)).Msg("Applied manual overrides")
	return nil
}

// export writes the consolidated lists and report as downloadable artifacts.
func (a *App) export(engine dracve.Engine) error {
	if err := os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return errors.WrapIO("create", a.config.OutputDir, err)
	}

	result, err := engine.Result()
	if err != nil {
		return err
	}
	inventory, err := engine.Inventory()
	if err != nil {
		return err
	}

	delimiter := tabular.DefaultDelimiter
	if a.config.Delimiter != "" {
		delimiter = []rune(a.config.Delimiter)[0]
	}
	artifacts := map[string]string{
		"consolidated_inventory.csv": tabular.Render(inventory, delimiter),
		"consolidated_orders.csv":    tabular.Render(result.Consolidated.Orders, delimiter),
		"consolidated_returns.csv":   tabular.Render(result.Consolidated.Returns, delimiter),
	}
	if result.Corrected != nil {
		artifacts["corrected_inventory.csv"] = tabular.Render(result.Corrected.Inventory, delimiter)
		artifacts["corrected_orders.csv"] = tabular.Render(result.Corrected.Orders, delimiter)
		artifacts["report.txt"] = report.Render(result.Corrected.Report)
	}

	for name, content := range artifacts {
		path := filepath.Join(a.config.OutputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.WrapIO("write", path, err)
		}
		a.logger.Info().Str("path", path).Msg("Wrote artifact")
	}
	return nil
}

// openPayloads opens the configured source files. Optional sources with no
// configured path stay nil.
func (a *App) openPayloads() (dracve.Payloads, closerList, error) {
	var closers closerList

	open := func(source, path string, required bool) (io.Reader, error) {
		if path == "" {
			if required {
				return nil, errors.NewInputError(source, "no file provided", errors.ErrSourceMissing)
			}
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewInputError(source, "failed to open file", errors.WrapIO("open", path, err))
		}
		closers = append(closers, f)
		return f, nil
	}

	var payloads dracve.Payloads
	var err error
	if payloads.Legacy, err = open("Legacy", a.config.LegacyFile, true); err != nil {
		return payloads, closers, err
	}
	if payloads.Spreadsheet, err = open("Spreadsheet", a.config.SpreadsheetFile, true); err != nil {
		return payloads, closers, err
	}
	if payloads.Supplier, err = open("Supplier", a.config.SupplierFile, true); err != nil {
		return payloads, closers, err
	}
	if payloads.ReverseLogistics, err = open("ReverseLogistics", a.config.ReverseLogisticsFile, false); err != nil {
		return payloads, closers, err
	}
	if payloads.Historical, err = open("Historical", a.config.HistoricalFile, false); err != nil {
		return payloads, closers, err
	}
	return payloads, closers, nil
}

type closerList []io.Closer

func (c closerList) close() {
	for _, closer := range c {
		_ = closer.Close()
	}
}
