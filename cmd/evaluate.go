package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpilot/internal/fixture"
	"github.com/kilianp07/gridpilot/pkg/export"
)

var evalOpts struct {
	fixture string
	format  string
	out     string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one grid snapshot and print the recommendation",
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalOpts.fixture, "fixture", "f", "", "fixture file describing the grid snapshot")
	evaluateCmd.Flags().StringVar(&evalOpts.format, "format", "json", "output format: json or html")
	evaluateCmd.Flags().StringVarP(&evalOpts.out, "out", "o", "", "output file (default stdout)")
	_ = evaluateCmd.MarkFlagRequired("fixture")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(evalOpts.format)
	if err != nil {
		return err
	}
	if format == export.FormatCSV {
		return errors.New("decisions export as json or html")
	}
	fx, err := fixture.Load(evalOpts.fixture)
	if err != nil {
		return err
	}
	req, err := fx.Request()
	if err != nil {
		return fmt.Errorf("fixture %s: %w", evalOpts.fixture, err)
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	eng, err := svc.FixtureEngine(fx)
	if err != nil {
		return err
	}
	out := eng.Evaluate(cmd.Context(), req)

	w, done, err := output(cmd, evalOpts.out)
	if err != nil {
		return err
	}
	if format == export.FormatHTML {
		err = export.DispatchChartHTML(w, out)
	} else {
		err = export.WriteJSON(w, out)
	}
	if cerr := done(); err == nil {
		err = cerr
	}
	return err
}
