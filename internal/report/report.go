// Package report renders finished runs as terminal charts, tables and
// export files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/galtonsim/internal/sim"
)

type HistogramOptions struct {
	Height int
	Color  bool
}

// Histogram plots actual counts against expected counts per bin.
func Histogram(r *sim.Result, opts HistogramOptions) string {
	if r == nil || len(r.Bins) == 0 {
		return ""
	}
	if opts.Height <= 0 {
		opts.Height = 10
	}

	counts := make([]float64, len(r.Bins))
	for i, c := range r.Counts() {
		counts[i] = float64(c)
	}
	width := 4 * len(r.Bins)
	if width < 20 {
		width = 20
	}

	plotOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.Caption(fmt.Sprintf("L=%d n=%d p=%.2f  actual vs expected", r.Params.Levels, r.Params.Balls, r.Params.ProbRight)),
	}
	if opts.Color {
		plotOpts = append(plotOpts, asciigraph.SeriesColors(asciigraph.Blue, asciigraph.DarkGray))
	}
	return asciigraph.PlotMany([][]float64{counts, r.ExpectedCounts()}, plotOpts...)
}

// Table writes one row per bin followed by totals.
func Table(w io.Writer, r *sim.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BIN\tCOUNT\tEXPECTED\tP\tDIFF\t")
	for _, b := range r.Bins {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.4f\t%+.2f\t\n", b.Index, b.Count, b.ExpectedCount, b.Expected, float64(b.Count)-b.ExpectedCount)
	}
	fmt.Fprintf(tw, "total\t%d\t%d\t\t\t\n", r.Total(), r.Params.Balls)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "chi-square %.3f (df %d)\n", r.ChiSquare, len(r.Bins)-1)
	return err
}

// EnsembleTable summarises independent runs, one row per seed.
func EnsembleTable(w io.Writer, results []*sim.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEED\tTOTAL\tCHI-SQUARE\tCOUNTS")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%.3f\t%v\n", r.Seed, r.Total(), r.ChiSquare, r.Counts())
	}
	return tw.Flush()
}

func WriteJSON(w io.Writer, r *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// WriteCSV writes a header and one record per bin.
func WriteCSV(w io.Writer, r *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"bin", "count", "expected_prob", "expected_count"}); err != nil {
		return err
	}
	for _, b := range r.Bins {
		rec := []string{
			strconv.Itoa(b.Index),
			strconv.Itoa(b.Count),
			strconv.FormatFloat(b.Expected, 'g', -1, 64),
			strconv.FormatFloat(b.ExpectedCount, 'f', 4, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
