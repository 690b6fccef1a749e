// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"io"
	"os"

	"github.com/js-arias/sophi/outbreak"
	"github.com/js-arias/sophi/tree"
)

// Outbreak reads the outbreak data
// defined in a project.
//
// The outbreak parameters,
// the case incidence,
// the deme populations,
// and the candidate samples
// must be defined in the project.
// The transmission tree
// and the ground truth migrations
// are read only if they are defined.
func (p *Project) Outbreak() (*outbreak.Data, error) {
	name := p.Path(Info)
	if name == "" {
		return nil, fmt.Errorf("outbreak parameters not defined in project %q", p.name)
	}
	d, err := readInfo(name, p.name)
	if err != nil {
		return nil, err
	}

	name = p.Path(Incidence)
	if name == "" {
		return nil, fmt.Errorf("case incidence not defined in project %q", p.name)
	}
	if err := readData(name, d.ReadIncidence); err != nil {
		return nil, err
	}

	name = p.Path(Populations)
	if name == "" {
		return nil, fmt.Errorf("deme populations not defined in project %q", p.name)
	}
	if err := readData(name, d.ReadPopulations); err != nil {
		return nil, err
	}

	name = p.Path(Samples)
	if name == "" {
		return nil, fmt.Errorf("candidate samples not defined in project %q", p.name)
	}
	if err := readData(name, d.ReadSamples); err != nil {
		return nil, err
	}

	if name = p.Path(Migrations); name != "" {
		if err := readData(name, d.ReadMigrations); err != nil {
			return nil, err
		}
	}

	if name = p.Path(Tree); name != "" {
		t, err := readTree(name, p.name)
		if err != nil {
			return nil, err
		}
		d.SetTree(t)
	}

	return d, nil
}

func readInfo(name, outName string) (*outbreak.Data, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := outbreak.ReadInfo(f, outName)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return d, nil
}

func readData(name string, read func(r io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func readTree(name, outName string) (*tree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := tree.ReadNexus(f, outName)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	t.CollapseSingletons()
	return t, nil
}
