// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package treecmd is a metapackage for commands
// that dealt with reconstructed transmission trees.
package treecmd

import (
	"github.com/js-arias/command"
	"github.com/js-arias/sophi/cmd/sophi/treecmd/draw"
	"github.com/js-arias/sophi/cmd/sophi/treecmd/events"
	"github.com/js-arias/sophi/cmd/sophi/treecmd/jsoncmd"
)

var Command = &command.Command{
	Usage: "tree <command> [<argument>...]",
	Short: "commands for reconstructed transmission trees",
}

func init() {
	Command.Add(draw.Command)
	Command.Add(events.Command)
	Command.Add(jsoncmd.Command)
}
