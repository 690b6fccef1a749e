// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package run implements a command to execute
// the pending inferences of a project.
package run

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: "run [--all] <project-file> [<inference>...]",
	Short: "run the pending inferences of a project",
	Long: `
Command run executes pending inferences of a sophi project. For each
inference it draws the samples of its sampling design, discarding the samples
drawn by its ancestors, reconstructs the demes of the tree that connects the
samples of the chain, enumerates the migratory events of the reconstruction,
computes the drawing coordinates of the tree, and evaluates the
reconstruction against the ground truth of the outbreak. The artifact files
of each step are written in the directory of the chain file, prefixed by the
inference ID.

The first argument of the command is the name of the project file. The
following arguments are the IDs of the inferences to be run; each one must be
pending. If the flag --all is given, no IDs are expected, and all the pending
inferences of the chain will be run, parents before descendants.

If an inference fails, its status is set to failed and the artifacts of the
finished steps are kept; a failed inference can not be run again.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var runAll bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&runAll, "all", false, "")
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

	var ids []string
	if runAll {
		// chain order guarantees
		// that a head is run before its descendants
		for _, id := range ch.Nodes() {
			if ch.Node(id).Status() == infer.Pending {
				ids = append(ids, id)
			}
		}
	} else {
		ids = args[1:]
		if len(ids) == 0 {
			return c.UsageError("expecting inference IDs, or the --all flag")
		}
	}

	for _, id := range ids {
		n := ch.Node(id)
		if n == nil {
			return fmt.Errorf("inference %s: not in chain %q", id, name)
		}
		fmt.Fprintf(c.Stdout(), "running inference %s\n", id)
		errRun := n.Run(data, n.Engine())
		if err := ch.Write(); err != nil {
			return err
		}
		if errRun != nil {
			return errRun
		}
		fmt.Fprintf(c.Stdout(), "inference %s: %d samples drawn\n", id, len(n.Samples()))
	}
	return nil
}
