// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package samples implements a command to print
// the sample counts of an inference.
package samples

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: "samples [--days] <project-file> <inference>",
	Short: "print the sample counts of an inference",
	Long: `
Command samples prints the candidate sample counts of an outbreak as seen
from an inference: the samples drawn by the inference itself, the samples
drawn by its ancestors, and the samples that remain available, as a
tab-delimited table on the standard output.

By default, the counts are aggregated per deme. If the flag --days is given,
a row per deme and day will be printed.

The first argument of the command is the name of the project file, and the
second argument is the ID of the inference.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var byDays bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&byDays, "days", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and inference ID")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	data, err := p.Outbreak()
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
	n := ch.Node(args[1])
	if n == nil {
		return fmt.Errorf("inference %s: not in chain %q", args[1], name)
	}

	r, err := n.SampleCounts(data)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(c.Stdout())
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'

	if byDays {
		tsv.Write([]string{"deme", "day", "current", "previous", "remaining"})
		for deme := 0; deme < data.Demes(); deme++ {
			for day := 0; day < data.Duration(); day++ {
				row := []string{
					strconv.Itoa(deme),
					strconv.Itoa(day),
					strconv.Itoa(r.Current[deme][day]),
					strconv.Itoa(r.Previous[deme][day]),
					strconv.Itoa(r.Remaining[deme][day]),
				}
				tsv.Write(row)
			}
		}
	} else {
		tsv.Write([]string{"deme", "current", "previous", "remaining"})
		for deme := 0; deme < data.Demes(); deme++ {
			var curr, prev, rem int
			for day := 0; day < data.Duration(); day++ {
				curr += r.Current[deme][day]
				prev += r.Previous[deme][day]
				rem += r.Remaining[deme][day]
			}
			row := []string{
				strconv.Itoa(deme),
				strconv.Itoa(curr),
				strconv.Itoa(prev),
				strconv.Itoa(rem),
			}
			tsv.Write(row)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
