// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package jsoncmd implements a command to write
// the drawing coordinates of a reconstructed tree
// as a JSON file.
package jsoncmd

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/layout"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: `json [--max <value>] [--lineage <value>] [--alpha <value>]
	[-o|--output <file>] <project-file> <inference>`,
	Short: "write the drawing coordinates of a tree as JSON",
	Long: `
Command json reads the reconstructed tree of an inference and writes the
drawing coordinates of its nodes as a JSON object keyed by node name. For
each node it writes the x and y coordinates, scaled to the unit square, the
deme and time of the node, the branch length, the name of the parent node,
and a flag marking the samples drawn by the inference itself.

The first argument of the command is the name of the project file, and the
second argument is the ID of the inference, which must have a reconstructed
tree.

A tree too large to be drawn is first thinned; the flags --max, --lineage,
and --alpha control the thinning as in 'sophi tree draw'.

The flag --output, or -o, defines the name of the output file; if no name is
given, the JSON will be printed on the standard output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var alpha float64
var maxLeaves int
var minLineage int
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&alpha, "alpha", layout.Alpha, "")
	c.Flags().IntVar(&maxLeaves, "max", layout.MaxLeaves, "")
	c.Flags().IntVar(&minLineage, "lineage", layout.MinLineage, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and inference ID")
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
	n := ch.Node(args[1])
	if n == nil {
		return fmt.Errorf("inference %s: not in chain %q", args[1], name)
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

	curr := make(map[string]bool)
	for _, s := range n.Samples() {
		curr[s] = true
	}
	nodes := layout.Place(t, curr)

	if output == "" {
		return layout.WriteJSON(c.Stdout(), nodes)
	}
	return writeJSON(output, nodes)
}

func writeJSON(name string, nodes map[string]layout.Node) (err error) {
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

	if err := layout.WriteJSON(f, nodes); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
