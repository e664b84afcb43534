// AngelaMos | 2026
// filter.go

// Package query composes SQL filters from typed predicates and pages the
// results. Column names only come from Column constants declared by
// repositories and every value is sent as a bound parameter, so request input
// never reaches the SQL text.
package query

import (
	"fmt"
	"strings"
)

type Column string

type Predicate interface {
	render(b *binder) string
}

type binder struct {
	args []any
	next int
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	placeholder := fmt.Sprintf("$%d", b.next)
	b.next++
	return placeholder
}

type eq struct {
	col Column
	val any
}

func (p eq) render(b *binder) string {
	return fmt.Sprintf("%s = %s", p.col, b.bind(p.val))
}

// Eq matches rows whose column equals v.
func Eq(col Column, v any) Predicate {
	return eq{col: col, val: v}
}

type isTrue struct {
	col  Column
	want bool
}

func (p isTrue) render(_ *binder) string {
	if p.want {
		return fmt.Sprintf("%s IS TRUE", p.col)
	}
	return fmt.Sprintf("%s IS NOT TRUE", p.col)
}

// IsTrue matches a boolean column against want; NULL counts as false.
func IsTrue(col Column, want bool) Predicate {
	return isTrue{col: col, want: want}
}

type containsFold struct {
	text string
	cols []Column
}

func (p containsFold) render(b *binder) string {
	placeholder := b.bind("%" + EscapeLike(p.text) + "%")

	parts := make([]string, 0, len(p.cols))
	for _, col := range p.cols {
		parts = append(parts, fmt.Sprintf("%s ILIKE %s", col, placeholder))
	}

	return "(" + strings.Join(parts, " OR ") + ")"
}

// ContainsFold is a case-insensitive substring match of text over any of
// cols. Blank text yields no predicate.
func ContainsFold(text string, cols ...Column) Predicate {
	text = strings.TrimSpace(text)
	if text == "" || len(cols) == 0 {
		return nil
	}
	return containsFold{text: text, cols: cols}
}

type group struct {
	op    string
	preds []Predicate
}

func (g group) render(b *binder) string {
	parts := make([]string, 0, len(g.preds))
	for _, p := range g.preds {
		parts = append(parts, p.render(b))
	}
	return "(" + strings.Join(parts, " "+g.op+" ") + ")"
}

func And(preds ...Predicate) Predicate {
	return newGroup("AND", preds)
}

func Or(preds ...Predicate) Predicate {
	return newGroup("OR", preds)
}

func newGroup(op string, preds []Predicate) Predicate {
	kept := compact(preds)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return group{op: op, preds: kept}
}

func compact(preds []Predicate) []Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return kept
}

// Filter is an AND of predicates; nil predicates are ignored so optional
// filters can be added unconditionally.
type Filter struct {
	preds []Predicate
}

func NewFilter(preds ...Predicate) *Filter {
	return &Filter{preds: compact(preds)}
}

func (f *Filter) Where(p Predicate) *Filter {
	if p != nil {
		f.preds = append(f.preds, p)
	}
	return f
}

func (f *Filter) Empty() bool {
	return f == nil || len(f.preds) == 0
}

// Build renders the WHERE clause with placeholders starting at $first.
// An empty filter renders as an empty string.
func (f *Filter) Build(first int) (string, []any) {
	if f.Empty() {
		return "", nil
	}

	b := &binder{next: first}
	parts := make([]string, 0, len(f.preds))
	for _, p := range f.preds {
		parts = append(parts, p.render(b))
	}

	return "WHERE " + strings.Join(parts, " AND "), b.args
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
