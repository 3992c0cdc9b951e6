package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/gridpilot/core/model"
)

const axisTimeLayout = "2006-01-02 15:04"

// ForecastChartHTML renders the demand forecast as a line chart page.
func ForecastChartHTML(w io.Writer, points []model.ForecastPoint) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Demand forecast", Subtitle: fmt.Sprintf("%d hourly points", len(points))}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Demand (MW)"}),
	)
	x := make([]string, 0, len(points))
	y := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		x = append(x, p.Timestamp.Format(axisTimeLayout))
		y = append(y, opts.LineData{Value: round1(p.DemandMW)})
	}
	line.SetXAxis(x).AddSeries("Demand", y)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render forecast chart: %w", err)
	}
	return nil
}

// PriceChartHTML renders wholesale prices as a line chart page.
func PriceChartHTML(w io.Writer, prices []model.MarketPrice) error {
	line := charts.NewLine()
	title := "Wholesale price"
	if len(prices) > 0 && prices[0].Region != "" {
		title += " (" + prices[0].Region + ")"
	}
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price (€/MWh)"}),
	)
	x := make([]string, 0, len(prices))
	y := make([]opts.LineData, 0, len(prices))
	for _, p := range prices {
		x = append(x, p.Timestamp.Format(axisTimeLayout))
		y = append(y, opts.LineData{Value: p.PricePerMWh})
	}
	line.SetXAxis(x).AddSeries("Price", y)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render price chart: %w", err)
	}
	return nil
}

// DispatchChartHTML renders the recommended dispatch per source as a bar chart.
func DispatchChartHTML(w io.Writer, out model.DecisionOutput) error {
	types := make([]model.EnergyType, 0, len(out.Dispatch))
	for t := range out.Dispatch {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: out.RecommendedAction, Subtitle: out.PrimaryFactor}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MW"}),
	)
	x := make([]string, 0, len(types))
	y := make([]opts.BarData, 0, len(types))
	for _, t := range types {
		x = append(x, t.String())
		y = append(y, opts.BarData{Value: round1(out.Dispatch[t])})
	}
	bar.SetXAxis(x).AddSeries("Dispatch", y)
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render dispatch chart: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
