// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Sophi is a tool for phylogeographic reconstruction
// of simulated disease outbreaks.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/sophi/cmd/sophi/evalcmd"
	"github.com/js-arias/sophi/cmd/sophi/infercmd"
	"github.com/js-arias/sophi/cmd/sophi/prj"
	"github.com/js-arias/sophi/cmd/sophi/samples"
	"github.com/js-arias/sophi/cmd/sophi/treecmd"
)

var app = &command.Command{
	Usage: "sophi <command> [<argument>...]",
	Short: "a tool for phylogeographic reconstruction of outbreaks",
}

func init() {
	app.Add(evalcmd.Command)
	app.Add(infercmd.Command)
	app.Add(prj.Command)
	app.Add(samples.Command)
	app.Add(treecmd.Command)
}

func main() {
	app.Main()
}
