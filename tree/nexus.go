// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// ReadNexus reads an annotated tree
// from a NEXUS file
// as produced by an outbreak simulator.
// Terminal labels are translated
// using the Translate block,
// and node annotations are read from comments
// in the form
//
//	[&type="I{<deme>}",time=<days>]
//
// Unnamed internal nodes are named
// as "innode_<number>",
// numbered as they are closed
// in the tree block.
// If name is empty,
// the name of the tree block is used.
func ReadNexus(r io.Reader, name string) (*Tree, error) {
	br := bufio.NewReader(r)

	if err := skipToWord(br, "translate"); err != nil {
		return nil, fmt.Errorf("nexus: %v", err)
	}
	tr, err := readTranslate(br)
	if err != nil {
		return nil, fmt.Errorf("nexus: translate block: %v", err)
	}

	if err := skipToWord(br, "tree"); err != nil {
		return nil, fmt.Errorf("nexus: %v", err)
	}
	label, err := readWord(br)
	if err != nil {
		return nil, fmt.Errorf("nexus: tree block: %v", err)
	}
	if name == "" {
		name = strings.TrimSuffix(label, "=")
	}

	p := &parser{
		r:         br,
		comment:   remasterComment,
		translate: tr,
		autoLabel: true,
	}
	t, err := p.parse(name)
	if err != nil {
		return nil, fmt.Errorf("nexus: tree %q: %v", name, err)
	}
	return t, nil
}

// ReadWord reads a whitespace delimited word.
func readWord(r *bufio.Reader) (string, error) {
	var w []rune
	for {
		r1, _, err := r.ReadRune()
		if err == io.EOF {
			if len(w) == 0 {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r1) {
			if len(w) == 0 {
				continue
			}
			break
		}
		w = append(w, r1)
	}
	return string(w), nil
}

// SkipToWord advances the reader
// until the indicated word is found,
// ignoring case.
func skipToWord(r *bufio.Reader, word string) error {
	for {
		w, err := readWord(r)
		if err == io.EOF {
			return fmt.Errorf("block %q not found", word)
		}
		if err != nil {
			return err
		}
		if strings.EqualFold(w, word) {
			return nil
		}
	}
}

// ReadTranslate reads the entries of a translate block,
// each one a numeric label
// and a terminal name,
// up to the closing semicolon.
func readTranslate(r *bufio.Reader) (map[string]string, error) {
	tr := make(map[string]string)
	for {
		num, err := readWord(r)
		if err != nil {
			return nil, err
		}
		if num == ";" {
			break
		}

		name, err := readWord(r)
		if err != nil {
			return nil, err
		}
		end := false
		if v, ok := strings.CutSuffix(name, ";"); ok {
			name = v
			end = true
		}
		name = strings.TrimSuffix(name, ",")
		if name == "" {
			return nil, fmt.Errorf("label %q: empty taxon name", num)
		}
		tr[num] = name
		if end {
			break
		}
	}
	if len(tr) == 0 {
		return nil, fmt.Errorf("no entries")
	}
	return tr, nil
}

// RemasterComment interprets a node comment
// in the form used by the outbreak simulator,
// with the deme stored as a type
// and the node time in days.
func remasterComment(t *Tree, id int, c string) error {
	if !strings.HasPrefix(c, "&") {
		return nil
	}

	_, s, ok := strings.Cut(c, `type="I{`)
	if !ok {
		return nil
	}
	ds, _, ok := strings.Cut(s, "}")
	if !ok {
		return nil
	}
	deme, err := strconv.Atoi(ds)
	if err != nil {
		return fmt.Errorf("node %q: invalid deme value %q", t.nodes[id].name, ds)
	}

	_, s, ok = strings.Cut(c, "time=")
	if !ok {
		return nil
	}
	ts := s
	if v, _, ok := strings.Cut(s, ","); ok {
		ts = v
	}
	time, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return fmt.Errorf("node %q: invalid time value %q", t.nodes[id].name, ts)
	}

	t.Annotate(id, deme, time)
	return nil
}
