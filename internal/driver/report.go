package driver

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// WriteReport prints the run summary followed by one row per example.
func WriteReport(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "topology\t%s\n", r.Topology)
	fmt.Fprintf(tw, "state\t%s\n", r.State)
	fmt.Fprintf(tw, "epochs\t%d\n", r.Epochs)
	fmt.Fprintf(tw, "error\t%s\n", formatFloat(r.Error))
	if r.Output != "" {
		fmt.Fprintf(tw, "weights\t%s\n", r.Output)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Examples) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "input\ttarget\toutput\terror")
	for _, ex := range r.Examples {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			joinFloats(ex.Input), joinFloats(ex.Target), joinFloats(ex.Output), formatFloat(ex.Error))
	}
	return tw.Flush()
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, " ")
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}
