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

// Newick reads a tree in parenthetical format,
// assigning the indicated name to the tree.
//
// Node annotations,
// if present,
// must be stored as NHX comments
// with the deme and time keys,
// for example:
//
//	(leaf_1:2[&&NHX:deme=0:time=7.5],leaf_2:3[&&NHX:deme=1:time=8.5]);
func Newick(r io.Reader, name string) (*Tree, error) {
	p := &parser{
		r:       bufio.NewReader(r),
		comment: nhxComment,
	}
	t, err := p.parse(name)
	if err != nil {
		return nil, fmt.Errorf("tree %q: %v", name, err)
	}
	return t, nil
}

// A parser reads a tree in parenthetical format.
// The comment hook interprets the content
// of a square bracket comment block
// for a node;
// the translate map,
// if defined,
// replaces terminal names;
// autoLabel assigns a name
// to unnamed internal nodes.
type parser struct {
	r         *bufio.Reader
	comment   func(t *Tree, id int, c string) error
	translate map[string]string
	autoLabel bool

	count int
}

func (p *parser) parse(name string) (*Tree, error) {
	for {
		r1, _, err := p.r.ReadRune()
		if err != nil {
			return nil, err
		}
		if r1 == '(' {
			break
		}
	}

	t := New(name, "")
	if err := p.readClade(t, -1); err != nil {
		return nil, err
	}

	for {
		r1, _, err := p.r.ReadRune()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(r1) {
			continue
		}
		if r1 == ';' {
			break
		}
		return nil, fmt.Errorf("got %q, want %q", r1, ';')
	}
	return t, nil
}

// ReadClade reads a whole internal node:
// its descendants,
// and then its own label,
// comment,
// and branch length.
// The opening parenthesis is already consumed.
// A parent of -1 indicates the root.
func (p *parser) readClade(t *Tree, parent int) error {
	id := t.root
	if parent >= 0 {
		var err error
		id, err = t.Add(parent, "", 0)
		if err != nil {
			return err
		}
	}

	for first := true; ; first = false {
		r1, _, err := p.r.ReadRune()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		if unicode.IsSpace(r1) {
			continue
		}
		if r1 == ',' {
			if first {
				return fmt.Errorf("unexpected %q", r1)
			}
			continue
		}
		if r1 == ')' {
			if first {
				return fmt.Errorf("unexpected %q", r1)
			}
			break
		}
		if r1 == '(' {
			if err := p.readClade(t, id); err != nil {
				return err
			}
			continue
		}

		// a terminal
		p.r.UnreadRune()
		if err := p.readTerm(t, id); err != nil {
			return err
		}
	}

	return p.readSuffix(t, id, true)
}

// ReadTerm reads a terminal node
// with its name,
// comment,
// and branch length.
func (p *parser) readTerm(t *Tree, parent int) error {
	name, err := p.readName()
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("expecting terminal name")
	}
	if tr, ok := p.translate[name]; ok {
		name = tr
	}

	id, err := t.Add(parent, name, 0)
	if err != nil {
		return err
	}
	return p.readSuffix(t, id, false)
}

// ReadSuffix reads the label
// (for an unnamed internal node),
// the comment,
// and the branch length of a node,
// in any order.
func (p *parser) readSuffix(t *Tree, id int, internal bool) error {
	for {
		r1, _, err := p.r.ReadRune()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		if unicode.IsSpace(r1) {
			continue
		}
		if r1 == '[' {
			c, err := p.readComment()
			if err != nil {
				return err
			}
			if p.comment != nil {
				if err := p.comment(t, id, c); err != nil {
					return err
				}
			}
			if internal && p.autoLabel && t.nodes[id].name == "" {
				p.count++
				nm := fmt.Sprintf("innode_%d", p.count)
				t.nodes[id].name = nm
				t.taxa[nm] = id
			}
			continue
		}
		if r1 == ':' {
			v, err := p.readLen()
			if err != nil {
				return err
			}
			t.nodes[id].brLen = v
			continue
		}
		if r1 == ',' || r1 == ')' || r1 == ';' {
			p.r.UnreadRune()
			return nil
		}

		// an internal node label
		if !internal || t.nodes[id].name != "" {
			return fmt.Errorf("unexpected %q", r1)
		}
		p.r.UnreadRune()
		name, err := p.readName()
		if err != nil {
			return err
		}
		if _, dup := t.taxa[name]; dup {
			return fmt.Errorf("node %q already in tree", name)
		}
		t.nodes[id].name = name
		t.taxa[name] = id
	}
}

// ReadName reads a node name.
// Underscores are kept as is,
// as sample identifiers use them.
func (p *parser) readName() (string, error) {
	var nm []rune
	for {
		r1, _, err := p.r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(r1) {
			break
		}
		if strings.ContainsRune("(),:;[]", r1) {
			p.r.UnreadRune()
			break
		}
		nm = append(nm, r1)
	}
	return string(nm), nil
}

// ReadComment reads the content of a comment block.
// The opening bracket is already consumed.
func (p *parser) readComment() (string, error) {
	var s []rune
	for {
		r1, _, err := p.r.ReadRune()
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}
		if r1 == ']' {
			break
		}
		s = append(s, r1)
	}
	return string(s), nil
}

// ReadLen reads a branch length.
func (p *parser) readLen() (float64, error) {
	var s []rune
	for {
		r1, _, err := p.r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if unicode.IsSpace(r1) {
			break
		}
		if strings.ContainsRune("(),:;[]", r1) {
			p.r.UnreadRune()
			break
		}
		s = append(s, r1)
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid branch length %q: %v", string(s), err)
	}
	return v, nil
}

// NhxComment interprets an NHX comment
// with deme and time keys.
func nhxComment(t *Tree, id int, c string) error {
	s, ok := strings.CutPrefix(c, "&&NHX")
	if !ok {
		// not an NHX comment
		return nil
	}

	deme := 0
	var time float64
	var hasDeme, hasTime bool
	for _, f := range strings.Split(s, ":") {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		switch k {
		case "deme":
			d, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("node %q: invalid deme value %q", t.nodes[id].name, v)
			}
			deme = d
			hasDeme = true
		case "time":
			tv, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("node %q: invalid time value %q", t.nodes[id].name, v)
			}
			time = tv
			hasTime = true
		}
	}
	if hasDeme && hasTime {
		t.Annotate(id, deme, time)
	}
	return nil
}

// Newick writes the tree in parenthetical format.
// If attr is true,
// node annotations are stored
// as NHX comments.
func (t *Tree) Newick(w io.Writer, attr bool) error {
	bw := bufio.NewWriter(w)
	t.writeClade(bw, t.root, attr)
	bw.WriteString(";\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("tree %q: %v", t.name, err)
	}
	return nil
}

func (t *Tree) writeClade(w *bufio.Writer, id int, attr bool) {
	n := t.nodes[id]
	if len(n.children) > 0 {
		w.WriteRune('(')
		for i, c := range n.children {
			if i > 0 {
				w.WriteRune(',')
			}
			t.writeClade(w, c, attr)
		}
		w.WriteRune(')')
	}

	w.WriteString(n.name)
	if id != t.root {
		w.WriteRune(':')
		w.WriteString(strconv.FormatFloat(n.brLen, 'g', -1, 64))
	}
	if attr && n.attr {
		fmt.Fprintf(w, "[&&NHX:deme=%d:time=%s]", n.deme, strconv.FormatFloat(n.time, 'g', -1, 64))
	}
}
