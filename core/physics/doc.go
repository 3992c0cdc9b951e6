// Package physics holds the asset models that bound what the grid can deliver:
// dynamic line rating, insulation degradation with partial discharge, and the
// small modular reactor controller.
package physics
