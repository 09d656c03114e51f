package resolver

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type ResolveStats struct {
	Attempted  int `json:"attempted"`
	Resolved   int `json:"resolved"`
	NotFound   int `json:"not_found"`
	Unresolved int `json:"unresolved"`
	Cyclic     int `json:"cyclic"`
}

// Item is the outcome of one query in a batch.
type Item struct {
	Query      Query       `json:"query"`
	Resolution *Resolution `json:"resolution,omitempty"`
	Err        error       `json:"-"`
	Error      string      `json:"error,omitempty"`
}

type Report struct {
	Items []Item       `json:"items"`
	Stats ResolveStats `json:"stats"`
}

// Targets returns the queries a batch run issues: every type carrying an
// inherit directive, plus undocumented types when IncludeUndocumented is set.
func (r *InheritanceResolver) Targets() []Query {
	var out []Query
	for _, n := range r.reg.Nodes() {
		switch {
		case n.Inherit != nil:
			out = append(out, QueryFor(n))
		case r.opts.IncludeUndocumented && !n.Documented():
			out = append(out, Query{TypeID: n.ID})
		}
	}
	return out
}

// ResolveAll resolves every target concurrently. Per-query failures are kept on
// their Item; only context cancellation aborts the batch.
func (r *InheritanceResolver) ResolveAll(ctx context.Context) (*Report, error) {
	queries := r.Targets()
	items := make([]Item, len(queries))

	workers := r.opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Resolve(q)
			items[i] = Item{Query: q, Resolution: res, Err: err}
			if err != nil {
				items[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Items: items}
	for _, it := range items {
		report.Stats.Attempted++
		switch {
		case it.Err == nil:
			report.Stats.Resolved++
		case errors.Is(it.Err, ErrNotFound):
			report.Stats.NotFound++
		case errors.Is(it.Err, ErrCyclicHierarchy):
			report.Stats.Cyclic++
		default:
			report.Stats.Unresolved++
		}
	}
	return report, nil
}
