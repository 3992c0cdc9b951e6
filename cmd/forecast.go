package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpilot/pkg/export"
)

var forecastOpts struct {
	format string
	out    string
	prices bool
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Export the 24h demand forecast or today's wholesale prices",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&forecastOpts.format, "format", "json", "output format: json, csv or html")
	forecastCmd.Flags().StringVarP(&forecastOpts.out, "out", "o", "", "output file (default stdout)")
	forecastCmd.Flags().BoolVar(&forecastOpts.prices, "prices", false, "export day-ahead prices from the market api instead")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(forecastOpts.format)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	w, done, err := output(cmd, forecastOpts.out)
	if err != nil {
		return err
	}
	if forecastOpts.prices {
		start := time.Now().Truncate(24 * time.Hour)
		prices, perr := svc.Prices(cmd.Context(), start, start.Add(24*time.Hour))
		if perr != nil {
			_ = done()
			return perr
		}
		switch format {
		case export.FormatCSV:
			err = export.WritePricesCSV(w, prices)
		case export.FormatHTML:
			err = export.PriceChartHTML(w, prices)
		default:
			err = export.WriteJSON(w, prices)
		}
	} else {
		err = export.WriteForecast(w, format, svc.Forecast(cmd.Context()))
	}
	if cerr := done(); err == nil {
		err = cerr
	}
	return err
}
