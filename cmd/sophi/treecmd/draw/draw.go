// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package draw implements a command to draw
// the reconstructed tree of an inference as an SVG file.
package draw

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/layout"
	"github.com/js-arias/sophi/project"
	"github.com/js-arias/sophi/tree"
)

var Command = &command.Command{
	Usage: `draw [--step <value>]
	[--max <value>] [--lineage <value>] [--alpha <value>]
	[-o|--output <out-prefix>] <project-file> [<inference>...]`,
	Short: "draw reconstructed trees as SVG files",
	Long: `
Command draw reads the reconstructed trees of the inferences of a sophi
project and draws them into SVG-encoded files, one file per inference, with
each branch colored by the deme assigned to the branch.

The first argument of the command is the name of the project file. The
following arguments are the IDs of the inferences to be drawn; if no ID is
given, all the inferences with a reconstructed tree will be drawn.

By default, 10 pixel units will be used per day on the time axis; use the
flag --step to define a different value (it can have decimal points).

A tree too large to be drawn is first thinned: terminals are removed, from
the shortest branches, without touching the root or the nodes of a migratory
event, until the tree is small enough. The flag --max defines the maximum
number of terminals drawn without thinning; the flag --lineage defines the
minimum size of a transmission lineage used for the thinning; and the flag
--alpha defines the weight exponent that penalizes the largest lineages.

By default, the file names are built from the inference IDs. Use the flag
--output, or -o, to define a prefix for the resulting files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var alpha float64
var stepX float64
var maxLeaves int
var minLineage int
var outPrefix string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&alpha, "alpha", layout.Alpha, "")
	c.Flags().Float64Var(&stepX, "step", 10, "")
	c.Flags().IntVar(&maxLeaves, "max", layout.MaxLeaves, "")
	c.Flags().IntVar(&minLineage, "lineage", layout.MinLineage, "")
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

	for _, id := range ids {
		n := ch.Node(id)
		if n == nil {
			return fmt.Errorf("inference %s: not in chain %q", id, name)
		}
		t, err := n.ReadTree()
		if err != nil {
			return err
		}
		if len(t.Leaves()) > maxLeaves {
			ev, err := events.FromTree(t, true)
			if err != nil {
				return err
			}
			if err := events.Thin(t, ev, maxLeaves, minLineage, alpha); err != nil {
				return err
			}
		}
		if err := writeSVG(outPrefix+id+".svg", t, data.Demes()); err != nil {
			return err
		}
	}
	return nil
}

func writeSVG(name string, t *tree.Tree, demes int) (err error) {
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

	if err := layout.SVG(f, t, demes, stepX); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
