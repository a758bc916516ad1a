package chart

import "chartsync/internal/model"

// overlayPalette maps each charted indicator to a fixed color. The mapping
// is a lookup table rather than positional assignment so a given indicator
// always renders the same way across runs.
var overlayPalette = map[model.Indicator]string{
	model.IndicatorSMA:       "#2962ff",
	model.IndicatorEMA:       "#ff6d00",
	model.IndicatorRSI:       "#9c27b0",
	model.IndicatorATR:       "#f57f17",
	model.IndicatorCCI:       "#00897b",
	model.IndicatorCMF:       "#6d4c41",
	model.IndicatorWilliamsR: "#d81b60",
}

// overlayFallbackColor renders any indicator missing from the palette, so
// an unknown overlay is never invisible.
const overlayFallbackColor = "#787b86"

// OverlayColor returns the palette color for an indicator, falling back to
// a defined neutral for indicators outside the table.
func OverlayColor(ind model.Indicator) string {
	if color, ok := overlayPalette[ind]; ok {
		return color
	}
	return overlayFallbackColor
}
