// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package evalcmd implements a command to report
// the evaluation scores of the inferences of a project.
package evalcmd

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/eval"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `eval [--plot <file>]
	[-o|--output <file>] <project-file> [<inference>...]`,
	Short: "report the evaluation scores of the inferences",
	Long: `
Command eval reads the evaluation scores of the inferences of a sophi
project and prints them as a tab-delimited table. For each inference it
prints the proportion of drawn samples, the mean and median sampling
proportion among the demes, the number of inferred migratory events, the
ratio of inferred events to true migrations, and the three accuracy scores:
the fraction of demes in which the true introduction time is inside the
inferred introduction interval, the same fraction weighted by the width of
the inferred interval, and the fraction of demes with a correct introduction
source.

The first argument of the command is the name of the project file. The
following arguments are the IDs of the inferences to be reported; if no ID
is given, all the successful inferences will be reported.

The flag --output, or -o, defines the name of the output file; if no name is
given, the table will be printed on the standard output.

If the flag --plot is defined, a bar chart with the three accuracy scores of
each inference will be saved in the indicated file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var plotFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	name := p.Path(project.Inferences)
	if name == "" {
		return fmt.Errorf("inference chain not defined in project %q", args[0])
	}
	ch, err := infer.Read(name)
	if err != nil {
		return err
	}

	ids := args[1:]
	if len(ids) == 0 {
		for _, id := range ch.Nodes() {
			if ch.Node(id).Status() == infer.Success {
				ids = append(ids, id)
			}
		}
	}

	res := make(map[string]*eval.Result, len(ids))
	for _, id := range ids {
		n := ch.Node(id)
		if n == nil {
			return fmt.Errorf("inference %s: not in chain %q", id, name)
		}
		r, err := n.ReadEval()
		if err != nil {
			return err
		}
		res[id] = r
	}

	if output == "" {
		if err := report(c.Stdout(), ids, res); err != nil {
			return err
		}
	} else if err := writeReport(output, ids, res); err != nil {
		return err
	}

	if plotFile != "" {
		if err := makePlot(ids, res); err != nil {
			return err
		}
	}
	return nil
}

var header = []string{
	"inference",
	"samples",
	"mean",
	"median",
	"events",
	"eventprop",
	"timecount",
	"timescore",
	"sourcecount",
}

func report(w io.Writer, ids []string, res map[string]*eval.Result) error {
	bw := bufio.NewWriter(w)
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'

	if err := tsv.Write(header); err != nil {
		return err
	}
	for _, id := range ids {
		r := res[id]
		mean, median := propStats(r)
		row := []string{
			id,
			strconv.FormatFloat(r.TotalProp, 'f', 6, 64),
			strconv.FormatFloat(mean, 'f', 6, 64),
			strconv.FormatFloat(median, 'f', 6, 64),
			strconv.Itoa(r.Events),
			strconv.FormatFloat(r.EventProp, 'f', 6, 64),
			strconv.FormatFloat(r.TimeCount, 'f', 6, 64),
			strconv.FormatFloat(r.TimeScore, 'f', 6, 64),
			strconv.FormatFloat(r.SourceCount, 'f', 6, 64),
		}
		if err := tsv.Write(row); err != nil {
			return err
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

func writeReport(name string, ids []string, res map[string]*eval.Result) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := report(f, ids, res); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

// propStats returns the mean and the median
// of the sampling proportions among the demes.
func propStats(r *eval.Result) (mean, median float64) {
	props := make([]float64, 0, len(r.SampleProps))
	for _, p := range r.SampleProps {
		props = append(props, p)
	}
	if len(props) == 0 {
		return 0, 0
	}
	slices.Sort(props)
	mean = stat.Mean(props, nil)
	median = stat.Quantile(0.5, stat.Empirical, props, nil)
	return mean, median
}

func makePlot(ids []string, res map[string]*eval.Result) error {
	p := plot.New()
	p.Y.Label.Text = "score"
	p.Y.Min = 0
	p.Y.Max = 1

	w := vg.Points(8)
	scores := []struct {
		name  string
		fill  color.Color
		value func(r *eval.Result) float64
	}{
		{"time count", color.Gray{Y: 200}, func(r *eval.Result) float64 { return r.TimeCount }},
		{"time score", color.Gray{Y: 120}, func(r *eval.Result) float64 { return r.TimeScore }},
		{"source count", color.Gray{Y: 40}, func(r *eval.Result) float64 { return r.SourceCount }},
	}

	for i, sc := range scores {
		var vals plotter.Values
		for _, id := range ids {
			vals = append(vals, sc.value(res[id]))
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return fmt.Errorf("while building chart: %v", err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = sc.fill
		bars.Offset = vg.Length(i-1) * w
		p.Add(bars)
		p.Legend.Add(sc.name, bars)
	}
	p.Legend.Top = true
	p.NominalX(ids...)

	if err := p.Save(vg.Length(len(ids)+2)*vg.Inch, 4*vg.Inch, plotFile); err != nil {
		return err
	}
	return nil
}
