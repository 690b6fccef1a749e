// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(chainsGuide)
	app.Add(projectsGuide)
	app.Add(strategiesGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
Sophi requires several files to read and process an outbreak. To reduce the
burden of keeping track of many files, a single project file is used to hold
the reference of all files required in the analysis. This guide explains the
structure of the file, but most of the time, the best and most secure way to
edit or view this file is by using sophi commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# sophi project files
	dataset	path
	incidence	incidence.tab
	inferences	inferences.tab
	info	outbreak.tab
	migrations	migrations.tab
	populations	populations.tab
	samples	samples.tab
	tree	sim.nexus

The valid file types are:

- Outbreak parameters. Defined by the dataset keyword "info". This file
  contains the general parameters of the simulated outbreak: the number of
  demes, the duration in days, and the origin deme, in the form of a
  tab-delimited file.
- Case incidence. Defined by the dataset keyword "incidence". This file
  contains the number of new cases on each deme and day of the outbreak, in
  the form of a tab-delimited file.
- Deme populations. Defined by the dataset keyword "populations". This file
  contains the population size of each deme, in the form of a tab-delimited
  file.
- Candidate samples. Defined by the dataset keyword "samples". This file
  contains the samples produced by the outbreak simulation, with the day and
  deme of collection of each sample, in the form of a tab-delimited file.
- Ground truth migrations. Defined by the dataset keyword "migrations". This
  file contains the migration events of the simulation, used to evaluate the
  inferences, in the form of a tab-delimited file.
- Transmission tree. Defined by the dataset keyword "tree". This file
  contains the simulated transmission tree, in NEXUS format, with the deme
  and time of each node.
- Inference chain. Defined by the dataset keyword "inferences". This file
  contains the inferences made over the outbreak, in the form of a
  tab-delimited file. The recommended way to add inferences is by using the
  command 'sophi infer add'.
	`,
}

var strategiesGuide = &command.Command{
	Usage: "strategies",
	Short: "about sampling strategies",
	Long: `
A sampling design picks a subset of the candidate samples of an outbreak. The
design is defined by a prioritization, that indicates the axis that is
allocated first, and a strategy code per axis.

The valid prioritizations are:

	T	temporal: allocate a quota per day,
		then draw the quota of each day among the demes
	S	spatial: allocate a quota per deme,
		then draw the quota of each deme among the days
	J	joint: a single draw over all samples,
		weighting each sample by its day and deme

The valid strategy codes are:

	US	in proportion to the number of candidate samples
	UC	in proportion to the case incidence
	UP	in proportion to the population size (spatial only)
	EV	evenly among the units
	EN	the earliest collected samples

A design also defines a time window, in days since the start of the outbreak,
a target size, either as an absolute number of samples or as a proportion of
the candidate pool, a minimum number of samples per allocation unit, and an
optional set of demes used as the candidate pool.

For example, a design with priority T, temporal code UC, and spatial code EV,
written "T(UC->EV)", allocates a quota per day in proportion to the daily
case counts, and inside each day draws the quota giving the same weight to
each deme. Not all code combinations are defined; an undefined combination is
rejected when the samples are drawn.
	`,
}

var chainsGuide = &command.Command{
	Usage: "chains",
	Short: "about inference chains",
	Long: `
The inferences made over an outbreak form a chain: each inference has a head,
that is, a parent inference, except the root of the chain, which is unique.
An inference draws its own batch of samples, discarding any sample already
drawn by one of its ancestors, and reconstructs the demes of the tree that
connects all the samples drawn along its chain, from the root to itself. In
this way each inference refines the reconstruction of its head with new
samples, and a sample is never drawn twice on the same path.

An inference starts as pending, and after running it becomes a success or a
failure. A failed inference keeps the artifacts of the finished steps, but it
can not be run again; create a new inference with the same head instead. An
inference can only be removed when it is finished, and when no pending or
running inference descends from it; removing an inference also removes all
its descendants.

The inferences are stored in the chain file of the project, and the artifact
files of each inference, the reconstructed tree, the migratory events, the
drawing coordinates, and the evaluation scores, are written in the directory
of the chain file, prefixed by the inference ID.
	`,
}
