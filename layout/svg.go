// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package layout

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/js-arias/blind"
	"github.com/js-arias/sophi/tree"
)

const yStep = 12

// SVG draws a tree as an SVG file on w.
// Each branch is colored by the deme
// assigned to its child node,
// using the rainbow color scheme of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_rainbow_smooth>;
// branches with an ambiguous deme are drawn in black.
// Demes is the number of demes of the outbreak,
// and step is the number of pixels per day
// on the time axis.
func SVG(w io.Writer, t *tree.Tree, demes int, step float64) error {
	s := copyTree(t, demes, step)
	return s.draw(w)
}

type svgNode struct {
	x     float64
	y     int
	topY  int
	botY  int
	color color.Color

	id   int
	tax  string
	time float64

	anc  *svgNode
	desc []*svgNode
}

type svgTree struct {
	y     int
	x     float64
	taxSz int
	root  *svgNode
}

func copyTree(t *tree.Tree, demes int, step float64) svgTree {
	maxSz := 0
	var root *svgNode
	ids := make(map[int]*svgNode)
	for _, id := range t.Nodes() {
		var anc *svgNode
		p := t.Parent(id)
		if p >= 0 {
			anc = ids[p]
		}

		n := &svgNode{
			id:    id,
			tax:   t.Taxon(id),
			anc:   anc,
			time:  t.Time(id),
			color: demeColor(t.Deme(id), demes),
		}
		if anc == nil {
			root = n
		} else {
			anc.desc = append(anc.desc, n)
		}
		ids[id] = n
		if t.IsTerm(id) && len(n.tax) > maxSz {
			maxSz = len(n.tax)
		}
	}

	s := svgTree{root: root}
	s.prepare(root, step)
	s.y = s.y * yStep
	s.taxSz = maxSz

	return s
}

func (s *svgTree) prepare(n *svgNode, step float64) {
	n.x = (n.time-s.root.time)*step + 10
	if s.x < n.x {
		s.x = n.x
	}

	if n.desc == nil {
		n.y = s.y*yStep + 5
		s.y += 1
		return
	}

	botY := 0
	topY := math.MaxInt
	for _, d := range n.desc {
		s.prepare(d, step)
		if d.y < topY {
			topY = d.y
		}
		if d.y > botY {
			botY = d.y
		}
	}
	n.topY = topY
	n.botY = botY
	n.y = topY + (botY-topY)/2
}

func demeColor(deme, demes int) color.Color {
	if deme < 0 {
		return color.RGBA{A: 255}
	}
	if demes < 2 {
		return blind.Sequential(blind.RainbowPurpleToRed, 0)
	}
	v := float64(deme) / float64(demes-1)
	return blind.Sequential(blind.RainbowPurpleToRed, v)
}

func (s *svgTree) draw(w io.Writer) error {
	fmt.Fprintf(w, "%s", xml.Header)
	e := xml.NewEncoder(w)
	svg := xml.StartElement{
		Name: xml.Name{Local: "svg"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(s.y + 5)},
			// assume that each character has 6 pixels wide
			{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(int(s.x) + s.taxSz*6)},
			{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2000/svg"},
		},
	}
	e.EncodeToken(svg)

	g := xml.StartElement{
		Name: xml.Name{Local: "g"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "stroke-width"}, Value: "2"},
			{Name: xml.Name{Local: "stroke"}, Value: "black"},
			{Name: xml.Name{Local: "stroke-linecap"}, Value: "round"},
			{Name: xml.Name{Local: "font-family"}, Value: "Verdana"},
			{Name: xml.Name{Local: "font-size"}, Value: "10"},
		},
	}
	e.EncodeToken(g)

	s.root.draw(e)
	s.root.label(e)

	e.EncodeToken(g.End())
	e.EncodeToken(svg.End())
	if err := e.Flush(); err != nil {
		return err
	}
	return nil
}

func (n svgNode) draw(e *xml.Encoder) {
	r, g, b, _ := n.color.RGBA()
	rgb := fmt.Sprintf("rgb(%d,%d,%d)", r>>8, g>>8, b>>8)

	// horizontal line
	ln := xml.StartElement{
		Name: xml.Name{Local: "line"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "x1"}, Value: strconv.Itoa(int(n.x - 5))},
			{Name: xml.Name{Local: "y1"}, Value: strconv.Itoa(int(n.y))},
			{Name: xml.Name{Local: "x2"}, Value: strconv.Itoa(int(n.x))},
			{Name: xml.Name{Local: "y2"}, Value: strconv.Itoa(int(n.y))},
			{Name: xml.Name{Local: "stroke"}, Value: rgb},
		},
	}
	if n.anc != nil {
		ln.Attr[0].Value = strconv.Itoa(int(n.anc.x))
	}
	e.EncodeToken(ln)
	e.EncodeToken(ln.End())

	if n.desc == nil {
		return
	}

	// draws vertical line
	ln.Attr[0].Value = ln.Attr[2].Value
	ln.Attr[1].Value = strconv.Itoa(int(n.topY))
	ln.Attr[3].Value = strconv.Itoa(int(n.botY))
	e.EncodeToken(ln)
	e.EncodeToken(ln.End())

	for _, d := range n.desc {
		d.draw(e)
	}
}

func (n svgNode) label(e *xml.Encoder) {
	if n.desc == nil {
		tx := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(int(n.x + 10))},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(int(n.y + 5))},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
				{Name: xml.Name{Local: "font-style"}, Value: "italic"},
			},
		}
		e.EncodeToken(tx)
		e.EncodeToken(xml.CharData(n.tax))
		e.EncodeToken(tx.End())
	}

	for _, d := range n.desc {
		d.label(e)
	}
}
