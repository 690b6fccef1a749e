// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package remove implements a command to remove
// inferences from a project.
package remove

import (
	"fmt"
	"os"
	"slices"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: "remove [--keep] <project-file> <inference>...",
	Short: "remove inferences from a project",
	Long: `
Command remove deletes inferences from the inference chain of a sophi
project. Removing an inference also removes all its descendants. An
inference that is pending or running, or that has a pending or running
descendant, can not be removed.

The first argument of the command is the name of the project file. The
following arguments are the IDs of the inferences to be removed.

By default, the artifact files of the removed inferences are also deleted.
Use the flag --keep to keep the artifact files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var keep bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&keep, "keep", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and inference IDs")
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

	for _, id := range args[1:] {
		var files []string
		if !keep {
			for _, v := range ch.Nodes() {
				n := ch.Node(v)
				if !slices.Contains(n.Chain(), id) {
					continue
				}
				files = append(files, n.TreeFile(), n.EventsFile(), n.LayoutFile(), n.EvalFile())
			}
		}
		if err := ch.Delete(id); err != nil {
			return err
		}
		for _, f := range files {
			os.Remove(f)
		}
	}
	return ch.Write()
}
