// Package prediction forecasts grid demand for the next day. The decision
// engine consumes only the first point of the series; the rest feeds the
// forecast exports.
package prediction
