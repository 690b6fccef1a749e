// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// the inferences of a project.
package list

import (
	"fmt"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
)

var Command = &command.Command{
	Usage: "list <project-file>",
	Short: "print the inferences of a project",
	Long: `
Command list reads the inference chain of a sophi project and prints the
inferences into the standard output, indented by their depth on the chain.
For each inference it prints the ID, the status, the sampling design, the
reconstruction method, the number of drawn samples, and the note, if any.

The argument of the command is the name of the project file.
	`,
	Run: run,
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
		return nil
	}
	ch, err := infer.Read(name)
	if err != nil {
		return err
	}

	root := ch.Root()
	if root == "" {
		return nil
	}
	printNode(c, ch, root)
	return nil
}

func printNode(c *command.Command, ch *infer.Chain, id string) {
	n := ch.Node(id)
	design := "checkpoint"
	if d := n.Design(); d != nil {
		design = d.String()
	}
	note := n.Note()
	if note != "" {
		note = "\t" + note
	}
	fmt.Fprintf(c.Stdout(), "%s%s\t%s\t%s\t%s\t%d samples%s\n", strings.Repeat("  ", n.Depth()), id, n.Status(), design, n.Method(), len(n.Samples()), note)

	for _, v := range ch.Nodes() {
		if ch.Node(v).Head() == id {
			printNode(c, ch, v)
		}
	}
}
