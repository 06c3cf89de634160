package property

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Dump renders every live cell of the table to w.
func (t *Table) Dump(w io.Writer) {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("%s (%d cells)", t.name, t.live))
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"id", "label", "kind", "refs", "dirty", "value", "dependencies", "subscribers"})

	for idx, e := range t.entries {
		if !e.live {
			continue
		}
		id := ID{index: uint32(idx), gen: e.gen}
		k := e.rec.kind.String()
		if e.rec.transition != nil {
			k = fmt.Sprintf("%s (%d queued)", k, e.rec.transition.pending())
		}
		tw.AppendRow(table.Row{
			id,
			t.Label(id),
			k,
			e.refCount,
			e.rec.dirty,
			fmt.Sprintf("%v", e.rec.value),
			joinIDs(e.rec.dependencies),
			joinIDs(e.rec.subscribers),
		})
	}

	s := t.Stats()
	tw.AppendFooter(table.Row{"", "", "", "", "", "", fmt.Sprintf("%d evaluations", s.Evaluations), fmt.Sprintf("%d dirty marks", s.DirtyMarks)})
	tw.Render()
}

func joinIDs(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, " ")
}

// Edges returns copies of the dependency and subscriber lists of id.
func (t *Table) Edges(id ID) (dependencies, subscribers []ID, err error) {
	err = t.withShared(id, "edges", func(r *record) error {
		dependencies = append([]ID(nil), r.dependencies...)
		subscribers = append([]ID(nil), r.subscribers...)
		return nil
	})
	return dependencies, subscribers, err
}
