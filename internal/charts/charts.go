// Package charts renders interactive campaign-performance charts as HTML.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string
	Subtitle   string
	Width      string // e.g., "900px"
	Height     string // e.g., "500px"
	Theme      string
	ShowLegend bool
	Colors     []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666"},
	}
}

// CampaignCTR pairs a campaign's observed CTR with the model's prediction.
type CampaignCTR struct {
	Campaign     string
	CurrentCTR   float64
	PredictedCTR float64
}

// RenderCTRComparison writes a grouped bar chart comparing current and
// predicted CTR per campaign.
func RenderCTRComparison(data []CampaignCTR, config ChartConfig, w io.Writer) error {
	if len(data) == 0 {
		return fmt.Errorf("no campaigns to chart")
	}

	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
			config.Colors[1],
		}),
	)

	xLabels := make([]string, len(data))
	current := make([]opts.BarData, len(data))
	predicted := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Campaign
		current[i] = opts.BarData{Value: point.CurrentCTR}
		predicted[i] = opts.BarData{Value: point.PredictedCTR}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Current CTR", current).
		AddSeries("Predicted CTR", predicted).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}
