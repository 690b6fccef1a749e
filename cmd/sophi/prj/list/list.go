// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// the datasets defined in a project.
package list

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: "list [--info] <project-file>",
	Short: "print the datasets of a project",
	Long: `
Command list reads a sophi project and prints the datasets defined in the
project, with the path of each dataset file, into the standard output.

If the flag --info is given, the outbreak data of the project will be read,
and a summary of the outbreak, the number of demes, the duration, the origin
deme, and the number of cases and candidate samples, will be printed.

The argument of the command is the name of the project file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var info bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&info, "info", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	for _, s := range p.Sets() {
		fmt.Fprintf(c.Stdout(), "%s\t%s\n", s, p.Path(s))
	}
	if !info {
		return nil
	}

	d, err := p.Outbreak()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "\noutbreak %q:\n", d.Name())
	fmt.Fprintf(c.Stdout(), "  demes:    %d\n", d.Demes())
	fmt.Fprintf(c.Stdout(), "  duration: %d days\n", d.Duration())
	fmt.Fprintf(c.Stdout(), "  origin:   deme %d\n", d.Origin())
	cases := 0
	for dm := 0; dm < d.Demes(); dm++ {
		cases += d.TotalCases(dm)
	}
	fmt.Fprintf(c.Stdout(), "  cases:    %d\n", cases)
	fmt.Fprintf(c.Stdout(), "  samples:  %d\n", d.NumSamples())
	if t := d.Tree(); t != nil {
		fmt.Fprintf(c.Stdout(), "  tree:     %d terminals\n", len(t.Leaves()))
	}
	fmt.Fprintf(c.Stdout(), "  truth:    %d migrations\n", len(d.Migrations()))
	return nil
}
