// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package set implements a command to set
// the dataset files of a project.
package set

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: "set [--rm] <project-file> <dataset> [<file>]",
	Short: "set a dataset file of a project",
	Long: `
Command set adds, replaces, or removes the file defined for a dataset of a
sophi project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

The second argument is the dataset keyword, and the third argument is the
path of the dataset file. The valid dataset keywords are:

	incidence	daily case incidence of each deme
	inferences	inference chain of the outbreak
	info	general parameters of the outbreak
	migrations	ground truth migrations
	populations	population size of each deme
	samples	candidate samples of the outbreak
	tree	simulated transmission tree, in NEXUS format

If the flag --rm is given, the dataset will be removed from the project; in
that case no file argument is expected. The dataset file itself is never
removed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var remove bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&remove, "rm", false, "")
}

var valid = map[project.Dataset]bool{
	project.Incidence:   true,
	project.Inferences:  true,
	project.Info:        true,
	project.Migrations:  true,
	project.Populations: true,
	project.Samples:     true,
	project.Tree:        true,
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and dataset")
	}
	pFile := args[0]
	set := project.Dataset(args[1])
	if !valid[set] {
		return c.UsageError(fmt.Sprintf("unknown dataset %q", set))
	}

	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	if remove {
		p.Add(set, "")
		return p.Write()
	}

	if len(args) < 3 {
		return c.UsageError("expecting dataset file")
	}
	path := args[2]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("on dataset %q: %v", set, err)
	}
	p.Add(set, path)
	return p.Write()
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p = project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
