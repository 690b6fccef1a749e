// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package samples is a metapackage for commands
// that dealt with the candidate samples of an outbreak.
package samples

import (
	"github.com/js-arias/command"
	"github.com/js-arias/sophi/cmd/sophi/samples/plotcmd"
)

var Command = &command.Command{
	Usage: "samples <command> [<argument>...]",
	Short: "commands for the candidate samples of an outbreak",
}

func init() {
	Command.Add(plotcmd.Command)
}
