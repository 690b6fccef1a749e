// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package events implements a command to print
// the migratory events of an inference.
package events

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: `events [--nolineages] [--unsorted]
	[-o|--output <file>] <project-file> <inference>`,
	Short: "print the migratory events of an inference",
	Long: `
Command events reads the reconstructed tree of an inference and prints its
migratory events, that is, the branches in which the deme of a node is
different from the deme of its parent, as a tab-delimited table.

The first argument of the command is the name of the project file, and the
second argument is the ID of the inference, which must have a reconstructed
tree.

By default, the transmission lineage of each event, the subtree of the same
deme seeded by the event, is extracted, and the events are sorted by the
midpoint of the origin and destination times. Use the flag --nolineages to
skip the lineages, and the flag --unsorted to keep the events in tree order.

The flag --output, or -o, defines the name of the output file; if no name is
given, the table will be printed on the standard output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var noLineages bool
var unsorted bool
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&noLineages, "nolineages", false, "")
	c.Flags().BoolVar(&unsorted, "unsorted", false, "")
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
	ev, err := n.Events(t, !noLineages, !unsorted)
	if err != nil {
		return err
	}

	if output == "" {
		return events.TSV(c.Stdout(), t.Name(), ev)
	}
	return writeEvents(output, t.Name(), ev)
}

func writeEvents(name, tree string, ev []events.Event) (err error) {
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

	if err := events.TSV(f, tree, ev); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
