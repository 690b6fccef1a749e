// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package infercmd is a metapackage for commands
// that dealt with the inference chain of an outbreak.
package infercmd

import (
	"github.com/js-arias/command"
	"github.com/js-arias/sophi/cmd/sophi/infercmd/add"
	"github.com/js-arias/sophi/cmd/sophi/infercmd/list"
	"github.com/js-arias/sophi/cmd/sophi/infercmd/remove"
	"github.com/js-arias/sophi/cmd/sophi/infercmd/run"
	"github.com/js-arias/sophi/cmd/sophi/infercmd/samples"
)

var Command = &command.Command{
	Usage: "infer <command> [<argument>...]",
	Short: "commands for phylogeographic inferences",
}

func init() {
	Command.Add(add.Command)
	Command.Add(list.Command)
	Command.Add(remove.Command)
	Command.Add(run.Command)
	Command.Add(samples.Command)
}
