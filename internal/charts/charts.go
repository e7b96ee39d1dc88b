// Package charts renders interactive deck analysis charts as HTML using
// go-echarts.
package charts

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/eternal-forge/eternal-forge/internal/analysis"
	"github.com/eternal-forge/eternal-forge/internal/deck"
	"github.com/eternal-forge/eternal-forge/internal/power"
)

// ChartConfig holds shared chart presentation options.
type ChartConfig struct {
	Width      string
	Height     string
	Theme      string
	ShowLegend bool
	Colors     []string
}

// DefaultChartConfig returns the default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// CurveBar builds a bar chart of the deck's cost curve, with power and
// non-power counts as separate series.
func CurveBar(deckName string, curve analysis.CurveData, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s — Cost Curve", deckName),
			Subtitle: fmt.Sprintf("Average cost %.2f, peak at %d", curve.AverageCost, curve.PeakCost),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	costs := sortedCosts(curve.ByCost)

	xLabels := make([]string, len(costs))
	nonPowerData := make([]opts.BarData, len(costs))
	powerData := make([]opts.BarData, len(costs))
	for i, cost := range costs {
		xLabels[i] = fmt.Sprintf("%d", cost)
		nonPower := curve.NonPowerByCost[cost]
		nonPowerData[i] = opts.BarData{Value: nonPower}
		powerData[i] = opts.BarData{Value: curve.ByCost[cost] - nonPower}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Non-power", nonPowerData).
		AddSeries("Power", powerData).
		SetSeriesOptions(
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)

	return bar
}

// TypePie builds a pie chart of the deck's card type distribution.
func TypePie(deckName string, types analysis.TypeDistribution, config ChartConfig) *charts.Pie {
	pie := charts.NewPie()

	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s — Card Types", deckName),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	names := make([]string, 0, len(types.ByType))
	for cardType := range types.ByType {
		names = append(names, string(cardType))
	}
	sort.Strings(names)

	data := make([]opts.PieData, 0, len(names))
	for _, name := range names {
		data = append(data, opts.PieData{
			Name:  name,
			Value: types.ByType[deck.CardType(name)],
		})
	}

	pie.AddSeries("types", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)

	return pie
}

// PowerOddsLine builds a line chart of per-turn power odds, one series per
// power amount.
func PowerOddsLine(deckName string, rows []power.TableRow, config ChartConfig) *charts.Line {
	line := charts.NewLine()

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s — Power Odds", deckName),
			Subtitle: "Probability of drawing at least N power by turn",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	xLabels := make([]string, len(rows))
	for i, row := range rows {
		xLabels[i] = fmt.Sprintf("T%d", row.Turn)
	}
	line.SetXAxis(xLabels)

	for _, amount := range powerAmounts(rows) {
		yData := make([]opts.LineData, len(rows))
		for i, row := range rows {
			odds, ok := row.Odds[amount]
			if !ok {
				yData[i] = opts.LineData{Value: nil}
				continue
			}
			yData[i] = opts.LineData{Value: round1(odds * 100)}
		}

		line.AddSeries(fmt.Sprintf("%d power", amount), yData).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			)
	}

	return line
}

// RenderDeckReport writes a single HTML page with the curve, type, and
// power odds charts for a deck.
func RenderDeckReport(w io.Writer, deckName string, full analysis.FullAnalysis, powerRows []power.TableRow) error {
	config := DefaultChartConfig()

	page := components.NewPage()
	page.SetLayout(components.PageCenterLayout)
	page.AddCharts(
		CurveBar(deckName, full.Curve, config),
		TypePie(deckName, full.Types, config),
		PowerOddsLine(deckName, powerRows, config),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render deck report: %w", err)
	}
	return nil
}

func sortedCosts(byCost map[int]int) []int {
	costs := make([]int, 0, len(byCost))
	for cost := range byCost {
		costs = append(costs, cost)
	}
	sort.Ints(costs)
	return costs
}

// powerAmounts collects every power amount any row carries odds for.
func powerAmounts(rows []power.TableRow) []int {
	seen := make(map[int]bool)
	for _, row := range rows {
		for amount := range row.Odds {
			seen[amount] = true
		}
	}
	amounts := make([]int, 0, len(seen))
	for amount := range seen {
		amounts = append(amounts, amount)
	}
	sort.Ints(amounts)
	return amounts
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
