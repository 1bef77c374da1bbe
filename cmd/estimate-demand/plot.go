package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"demandest/internal/campaign"
)

var (
	earlierColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	laterColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// writePlot draws the selected demand of both periods over their start
// dates, with a dashed horizontal line at each period mean. Rows without a
// parsed start date or demand are left out of the chart.
func writePlot(path string, earlier, later []campaign.Record, report estimateReport) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Campaign demand - %s", report.Country)
	p.X.Label.Text = "campaign start"
	p.Y.Label.Text = "demand (EUR)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	if err := addPeriod(p, "earlier", earlier, report.Earlier.MeanDemand, earlierColor); err != nil {
		return err
	}
	if err := addPeriod(p, "later", later, report.Later.MeanDemand, laterColor); err != nil {
		return err
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func addPeriod(p *plot.Plot, label string, rows []campaign.Record, mean *float64, col color.Color) error {
	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		if r.DateStart == nil || r.Demand == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(r.DateStart.Unix()), Y: *r.Demand})
	}
	if len(pts) == 0 {
		return nil
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.Color = col
	scatter.Radius = vg.Points(3)
	scatter.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add(label, scatter)

	if mean != nil {
		minX, maxX := pts[0].X, pts[0].X
		for _, pt := range pts {
			if pt.X < minX {
				minX = pt.X
			}
			if pt.X > maxX {
				maxX = pt.X
			}
		}
		meanLine, err := plotter.NewLine(plotter.XYs{{X: minX, Y: *mean}, {X: maxX, Y: *mean}})
		if err != nil {
			return err
		}
		meanLine.Color = col
		meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(meanLine)
	}
	return nil
}
