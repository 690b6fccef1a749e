// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add an inference
// to the chain of a project.
package add

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/project"
	"github.com/js-arias/sophi/sampling"
)

var Command = &command.Command{
	Usage: `add [--head <inference>] [--checkpoint]
	[--priority <axis>] [--temporal <code>] [--spatial <code>]
	[--earliest <day>] [--latest <day>]
	[-n|--number <value>] [-p|--proportion <value>]
	[--min <value>] [--demes <deme>,...]
	[--method <method>] [--seed <value>] [--note <text>]
	<project-file>`,
	Short: "add an inference to a project",
	Long: `
Command add creates a new pending inference on the inference chain of a sophi
project, and prints the ID of the new inference. The inference is only
defined; use the command 'sophi infer run' to execute it.

The argument of the command is the name of the project file.

The flag --head defines the parent of the new inference. An inference without
a head is the root of the chain; there can be only one root per outbreak.

The sampling design of the inference is set with the flag --priority, for the
axis allocated first ("T", "S", or "J"), and the flags --temporal and
--spatial, with the strategy code of each axis (see 'sophi help strategies').
The default design is a joint draw weighted by the case incidence, "J(UC)".
The flags --number (or -n) and --proportion (or -p) define the target size of
the draw, as an absolute number of samples, or as a proportion of the
candidate pool; one of them is required. The flags --earliest and --latest
define the time window, in days since the start of the outbreak; the flag
--min defines the minimum number of samples per allocation unit; and the flag
--demes restricts the candidate pool to a comma separated set of demes.

If the flag --checkpoint is given, the inference has no sampling design and
draws no new samples; it only reconstructs over the samples drawn by its
ancestors. The sampling flags are ignored.

The flag --method defines the reconstruction method: "parsimony", the
default, uses the built-in parsimony engine; any other value is interpreted
as the path of an external reconstruction program. The flag --seed defines
the random seed of the inference; if no seed is given, a new seed will be
picked at random. The flag --note attaches a free text note.

If the project does not have a chain file, a new one will be created with the
name 'inferences.tab'.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var checkpoint bool
var earliest int
var latest int
var minimum int
var number int
var seed uint64
var proportion float64
var demesFlag string
var headID string
var method string
var note string
var priority string
var spatial string
var temporal string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&checkpoint, "checkpoint", false, "")
	c.Flags().IntVar(&earliest, "earliest", 0, "")
	c.Flags().IntVar(&latest, "latest", -1, "")
	c.Flags().IntVar(&minimum, "min", 0, "")
	c.Flags().IntVar(&number, "number", -1, "")
	c.Flags().IntVar(&number, "n", -1, "")
	c.Flags().Uint64Var(&seed, "seed", 0, "")
	c.Flags().Float64Var(&proportion, "proportion", 0, "")
	c.Flags().Float64Var(&proportion, "p", 0, "")
	c.Flags().StringVar(&demesFlag, "demes", "", "")
	c.Flags().StringVar(&headID, "head", "", "")
	c.Flags().StringVar(&method, "method", "", "")
	c.Flags().StringVar(&note, "note", "", "")
	c.Flags().StringVar(&priority, "priority", "J", "")
	c.Flags().StringVar(&temporal, "temporal", "UC", "")
	c.Flags().StringVar(&spatial, "spatial", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	var d *sampling.Design
	if !checkpoint {
		d, err = makeDesign(c)
		if err != nil {
			return err
		}
	}

	ch, err := openChain(p)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = infer.NewSeed()
	}
	n, err := ch.Add(headID, d, method, seed)
	if err != nil {
		return err
	}
	if note != "" {
		n.SetNote(note)
	}

	if err := ch.Write(); err != nil {
		return err
	}
	if p.Path(project.Inferences) == "" {
		p.Add(project.Inferences, ch.Name())
		if err := p.Write(); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.Stdout(), "%s\n", n.ID())
	return nil
}

func makeDesign(c *command.Command) (*sampling.Design, error) {
	d := sampling.New()
	if err := d.SetStrategy(sampling.Priority(priority), sampling.Code(temporal), sampling.Code(spatial)); err != nil {
		return nil, c.UsageError(err.Error())
	}
	if err := d.SetWindow(earliest, latest); err != nil {
		return nil, c.UsageError(err.Error())
	}

	if number < 0 && proportion == 0 {
		return nil, c.UsageError("expecting target size, use --number or --proportion")
	}
	if number >= 0 {
		if err := d.SetNumber(number); err != nil {
			return nil, c.UsageError(err.Error())
		}
	} else if err := d.SetProportion(proportion); err != nil {
		return nil, c.UsageError(err.Error())
	}

	if err := d.SetMin(minimum); err != nil {
		return nil, c.UsageError(err.Error())
	}
	if demesFlag != "" {
		var demes []int
		for _, s := range strings.Split(demesFlag, ",") {
			dm, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, c.UsageError(fmt.Sprintf("invalid --demes value %q", demesFlag))
			}
			demes = append(demes, dm)
		}
		if err := d.SetDemes(demes); err != nil {
			return nil, c.UsageError(err.Error())
		}
	}
	return d, nil
}

func openChain(p *project.Project) (*infer.Chain, error) {
	name := p.Path(project.Inferences)
	if name == "" {
		return infer.New("inferences.tab"), nil
	}
	ch, err := infer.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		return infer.New(name), nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}
