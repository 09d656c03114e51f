package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCyclicBase = errors.New("cyclic base-type chain")

// BaseCycles returns every distinct cycle found by following base-type links.
// Each cycle is reported once, starting from its smallest ID.
func (r *Registry) BaseCycles() [][]string {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(r.nodes))
	var cycles [][]string

	for _, start := range r.order {
		if state[start] != unvisited {
			continue
		}
		var path []string
		id := start
		for id != "" && state[id] == unvisited {
			state[id] = onPath
			path = append(path, id)
			id = r.nodes[id].BaseID
		}
		if id != "" && state[id] == onPath {
			for i, p := range path {
				if p == id {
					cycles = append(cycles, rotateToMin(path[i:]))
					break
				}
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return cycles
}

// Validate checks the acyclic base-chain invariant.
func (r *Registry) Validate() error {
	var errs []error
	for _, c := range r.BaseCycles() {
		errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrCyclicBase, strings.Join(c, " -> "), c[0]))
	}
	return errors.Join(errs...)
}

func rotateToMin(cycle []string) []string {
	minIdx := 0
	for i, id := range cycle {
		if id < cycle[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[minIdx:]...)
	out = append(out, cycle[:minIdx]...)
	return out
}
