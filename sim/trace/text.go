package trace

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

type line struct {
	seq  uint64
	text string
}

// WriteText renders every record in execution order, one per line:
//
//	[5] deliver gen.out -> copy.in: 1.5
//	[5] internal gen (elapsed 5)
//	[5] external copy (elapsed 5, 1 input)
//	[7] drop sensor.out: 0.25
func (st *SimulationTrace) WriteText(w io.Writer) error {
	if st == nil {
		return nil
	}
	lines := make([]line, 0, len(st.Transitions)+len(st.Deliveries)+len(st.Drops))
	for _, tr := range st.Transitions {
		var text string
		switch tr.Kind {
		case KindInternal:
			text = fmt.Sprintf("[%d] %s %s (elapsed %d)", tr.Clock, tr.Kind, tr.Model, tr.Elapsed)
		default:
			text = fmt.Sprintf("[%d] %s %s (elapsed %d, %s)", tr.Clock, tr.Kind, tr.Model, tr.Elapsed, plural(tr.Inputs, "input"))
		}
		lines = append(lines, line{seq: tr.Seq, text: text})
	}
	for _, d := range st.Deliveries {
		lines = append(lines, line{seq: d.Seq, text: fmt.Sprintf("[%d] deliver %s -> %s: %s", d.Clock, d.From, d.To, d.Value)})
	}
	for _, d := range st.Drops {
		lines = append(lines, line{seq: d.Seq, text: fmt.Sprintf("[%d] drop %s: %s", d.Clock, d.From, d.Value)})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].seq < lines[j].seq })

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintln(bw, l.text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
