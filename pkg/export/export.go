// Package export writes forecasts, prices and decisions to files for operators.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridpilot/core/model"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// WriteForecast writes the forecast in the requested format.
func WriteForecast(w io.Writer, f Format, points []model.ForecastPoint) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, points)
	case FormatCSV:
		return WriteCSV(w, points)
	case FormatHTML:
		return ForecastChartHTML(w, points)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes the forecast with one hourly point per row.
func WriteCSV(w io.Writer, points []model.ForecastPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "demand_mw"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			p.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.DemandMW, 'f', 3, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePricesCSV writes wholesale prices.
func WritePricesCSV(w io.Writer, prices []model.MarketPrice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "price_per_mwh", "currency", "region"}); err != nil {
		return err
	}
	for _, p := range prices {
		rec := []string{
			p.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.PricePerMWh, 'f', 2, 64),
			p.Currency,
			p.Region,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
