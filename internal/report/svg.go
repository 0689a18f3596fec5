package report

import (
	"fmt"
	"strings"

	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/sim"
	"github.com/san-kum/galtonsim/internal/viz"
)

// SVG draws the final state of a run: pegs shaded by hit ratio, expected
// bars as outlines and actual bars filled.
func SVG(r *sim.Result, layout board.Layout, theme viz.Theme) string {
	if r == nil || r.Params.Levels < 1 {
		return ""
	}
	levels := r.Params.Levels
	palette := viz.NewPalette(theme)
	width, height := layout.Size(levels)
	ball := palette.Ball.Hex()

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, width, height, width, height))

	top := layout.BarTop(levels)
	half := layout.XSpacing / 2
	for _, b := range r.Bins {
		x, _ := layout.Location(2*b.Index, levels-1)
		actual := 0.0
		if r.Params.Balls > 0 {
			actual = r.Scale * float64(b.Count) / float64(r.Params.Balls)
		}
		sb.WriteString(fmt.Sprintf(`<rect class="actual" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, x-half, top, layout.XSpacing, actual, ball))
		sb.WriteString(fmt.Sprintf(`<rect class="expected" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="rgba(0, 0, 0, 0.1)" stroke="%s"/>
`, x-half, top, layout.XSpacing, r.Scale*b.Expected, ball))
	}

	hits := make(map[[2]int]int, len(r.Pegs))
	for _, p := range r.Pegs {
		hits[[2]int{p.Row, p.Col}] = p.Hits
	}
	for row := 0; row < levels; row++ {
		for col := levels - 1 - row; col <= levels-1+row; col += 2 {
			x, y := layout.Location(col, row)
			fill := ball
			if row > 0 {
				ratio := 0.0
				if r.Params.Balls > 0 {
					ratio = float64(hits[[2]int{row, col}]) / float64(r.Params.Balls)
				}
				fill = palette.Peg(ratio).Hex()
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, layout.PegRadius, fill))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
