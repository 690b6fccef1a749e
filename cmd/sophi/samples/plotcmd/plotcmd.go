// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package plotcmd implements a command to plot
// the daily cases and samples of each deme.
package plotcmd

import (
	"fmt"
	"image/color"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/outbreak"
	"github.com/js-arias/sophi/project"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `plot [--inference <inference>]
	[-o|--output <out-prefix>] <project-file>`,
	Short: "plot the daily cases and samples of each deme",
	Long: `
Command plot reads the outbreak data of a sophi project and draws, for each
deme, the daily case incidence and the daily number of candidate samples, as
a PNG file per deme.

The argument of the command is the name of the project file.

If the flag --inference is given, the samples drawn along the chain of the
indicated inference, per day, will be added to the plots.

By default, the files are named 'deme-<deme>.png'. Use the flag --output, or
-o, to define a prefix for the resulting files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var inference string
var outPrefix string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&inference, "inference", "", "")
	c.Flags().StringVar(&outPrefix, "output", "", "")
	c.Flags().StringVar(&outPrefix, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	data, err := p.Outbreak()
	if err != nil {
		return err
	}

	var rep *infer.Report
	if inference != "" {
		name := p.Path(project.Inferences)
		if name == "" {
			return fmt.Errorf("inference chain not defined in project %q", args[0])
		}
		ch, err := infer.Read(name)
		if err != nil {
			return err
		}
		n := ch.Node(inference)
		if n == nil {
			return fmt.Errorf("inference %s: not in chain %q", inference, name)
		}
		rep, err = n.SampleCounts(data)
		if err != nil {
			return err
		}
	}

	for deme := 0; deme < data.Demes(); deme++ {
		name := fmt.Sprintf("%sdeme-%d.png", outPrefix, deme)
		if err := makePlot(name, data, deme, rep); err != nil {
			return err
		}
	}
	return nil
}

func makePlot(name string, data *outbreak.Data, deme int, rep *infer.Report) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("deme %d", deme)
	p.X.Label.Text = "day"
	p.Y.Label.Text = "count"

	cases, err := plotter.NewLine(days(data.Incidence(deme)))
	if err != nil {
		return fmt.Errorf("while building plot: %v", err)
	}
	cases.LineStyle.Color = color.Gray{Y: 160}
	p.Add(cases)
	p.Legend.Add("cases", cases)

	avail := make([]int, data.Duration())
	for _, s := range data.Samples() {
		if s.Deme != deme {
			continue
		}
		if day := s.Day(); day >= 0 && day < data.Duration() {
			avail[day]++
		}
	}
	samples, err := plotter.NewLine(days(avail))
	if err != nil {
		return fmt.Errorf("while building plot: %v", err)
	}
	samples.LineStyle.Color = color.Black
	p.Add(samples)
	p.Legend.Add("samples", samples)

	if rep != nil {
		drawn := make([]int, data.Duration())
		for day := range drawn {
			drawn[day] = rep.Current[deme][day] + rep.Previous[deme][day]
		}
		ln, err := plotter.NewLine(days(drawn))
		if err != nil {
			return fmt.Errorf("while building plot: %v", err)
		}
		ln.LineStyle.Color = color.RGBA{B: 255, A: 255}
		ln.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(ln)
		p.Legend.Add("drawn", ln)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return err
	}
	return nil
}

func days(counts []int) plotter.XYs {
	xy := make(plotter.XYs, len(counts))
	for d, v := range counts {
		xy[d].X = float64(d)
		xy[d].Y = float64(v)
	}
	return xy
}
