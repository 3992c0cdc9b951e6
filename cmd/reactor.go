package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/physics"
	"github.com/kilianp07/gridpilot/pkg/export"
)

var reactorOpts struct {
	target float64
	steps  int
	dt     float64
	json   bool
}

var reactorCmd = &cobra.Command{
	Use:   "reactor",
	Short: "Simulate the reactor controller steering towards a power target",
	RunE:  runReactor,
}

func init() {
	reactorCmd.Flags().Float64Var(&reactorOpts.target, "target", 180, "power target in MW")
	reactorCmd.Flags().IntVar(&reactorOpts.steps, "steps", 60, "number of simulation steps")
	reactorCmd.Flags().Float64Var(&reactorOpts.dt, "dt", 1, "seconds per step")
	reactorCmd.Flags().BoolVar(&reactorOpts.json, "json", false, "print the trajectory as json")
	rootCmd.AddCommand(reactorCmd)
}

type reactorSample struct {
	Step  int                         `json:"step"`
	State model.ReactorState          `json:"state"`
	Limit physics.DispatchConstraints `json:"limits"`
	Trip  bool                        `json:"tripped"`
}

func simulateReactor(ctrl *physics.ReactorController, target float64, steps int, dt float64) []reactorSample {
	s := ctrl.Nominal()
	out := make([]reactorSample, 0, steps)
	for i := 1; i <= steps; i++ {
		s = ctrl.Step(s, target, dt)
		out = append(out, reactorSample{Step: i, State: s, Limit: ctrl.DispatchConstraints(s), Trip: ctrl.Tripped(s)})
	}
	return out
}

func runReactor(cmd *cobra.Command, args []string) error {
	if reactorOpts.steps <= 0 {
		return fmt.Errorf("steps must be > 0")
	}
	samples := simulateReactor(physics.NewReactorController(physics.BSR220()), reactorOpts.target, reactorOpts.steps, reactorOpts.dt)
	if reactorOpts.json {
		return export.WriteJSON(cmd.OutOrStdout(), samples)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tPOWER_MW\tROD\tTEMP_C\tPRESSURE_MPA\tMAX_MW\tTRIP")
	for _, s := range samples {
		fmt.Fprintf(tw, "%d\t%.1f\t%.3f\t%.1f\t%.2f\t%.1f\t%v\n",
			s.Step, s.State.PowerOutputMW, s.State.RodInsertion, s.State.CoreTemperatureC,
			s.State.CoolantPressureMPa, s.Limit.MaxMW, s.Trip)
	}
	return tw.Flush()
}
