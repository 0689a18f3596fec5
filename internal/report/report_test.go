package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/sim"
	"github.com/san-kum/galtonsim/internal/viz"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Params: sim.Params{Levels: 3, Balls: 4, ProbRight: 0.5},
		Seed:   9,
		Speed:  1,
		Scale:  300,
		Bins: []sim.BinResult{
			{Index: 0, Count: 1, Expected: 0.25, ExpectedCount: 1},
			{Index: 1, Count: 3, Expected: 0.5, ExpectedCount: 2},
			{Index: 2, Count: 0, Expected: 0.25, ExpectedCount: 1},
		},
		Pegs: []board.Peg{
			{Row: 0, Col: 2, Hits: 0},
			{Row: 1, Col: 1, Hits: 2},
			{Row: 1, Col: 3, Hits: 2},
			{Row: 2, Col: 0, Hits: 1},
			{Row: 2, Col: 2, Hits: 3},
			{Row: 2, Col: 4, Hits: 0},
		},
		ChiSquare: 1.5,
	}
}

func TestHistogram(t *testing.T) {
	out := Histogram(sampleResult(), HistogramOptions{Height: 5})
	if out == "" {
		t.Fatal("empty histogram")
	}
	if !strings.Contains(out, "actual vs expected") {
		t.Error("missing caption")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain histogram should have no colour codes")
	}
	if Histogram(nil, HistogramOptions{}) != "" {
		t.Error("nil result should render nothing")
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Table(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, three bins, total, chi-square
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "+1.00") {
		t.Errorf("bin 1 should be one over expected: %q", lines[2])
	}
	if !strings.Contains(out, "chi-square 1.500 (df 2)") {
		t.Errorf("missing chi-square line:\n%s", out)
	}
}

func TestEnsembleTable(t *testing.T) {
	var buf bytes.Buffer
	a, b := sampleResult(), sampleResult()
	b.Seed = 10
	if err := EnsembleTable(&buf, []*sim.Result{a, b}); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
	if !strings.Contains(buf.String(), "[1 3 0]") {
		t.Errorf("missing counts:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	var decoded sim.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Total() != 4 || len(decoded.Pegs) != 6 {
		t.Errorf("decoded result incomplete: %+v", decoded)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 bins, got %d records", len(records))
	}
	if records[0][0] != "bin" || records[2][1] != "3" || records[2][2] != "0.5" {
		t.Errorf("unexpected records %v", records)
	}
}

func TestSVG(t *testing.T) {
	svg := SVG(sampleResult(), board.DefaultLayout(), viz.ThemeClassic)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatal("not an svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 6 {
		t.Errorf("expected 6 pegs, got %d", n)
	}
	if n := strings.Count(svg, `class="expected"`); n != 3 {
		t.Errorf("expected 3 expected bars, got %d", n)
	}
	// L=3 board: 100 wide, 380 tall
	if !strings.Contains(svg, `width="100" height="380"`) {
		t.Error("unexpected dimensions")
	}
	// bin 1 holds 3 of 4 balls at scale 300
	if !strings.Contains(svg, `height="225.0" fill="#2f65a7"`) {
		t.Error("missing actual bar for bin 1")
	}
	if SVG(nil, board.DefaultLayout(), viz.ThemeClassic) != "" {
		t.Error("nil result should render nothing")
	}
}

func TestReportsFromRun(t *testing.T) {
	results, err := sim.NewEnsemble(sim.Params{Levels: 6, Balls: 50, ProbRight: 0.3}, 1, 3).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]

	var buf bytes.Buffer
	if err := Table(&buf, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "50") {
		t.Error("table missing ball total")
	}
	if n := strings.Count(SVG(r, board.DefaultLayout(), viz.ThemeMoss), "<circle"); n != 21 {
		t.Errorf("expected 21 pegs for 6 levels, got %d", n)
	}
}
