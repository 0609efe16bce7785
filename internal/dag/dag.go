// Package dag orders nodes of a dependency graph.
package dag

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

// Edge states that From must complete before To.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// CycleError reports a back-edge found during resolution. Node lies on the
// cycle; Path runs from Node around the cycle back to Node.
type CycleError struct {
	Node string
	Path []string
}

func (e *CycleError) Error() string {
	return e.coded().Error()
}

// Unwrap exposes the coded error so errors.CodeOf and errors.CategoryOf work.
func (e *CycleError) Unwrap() error {
	return e.coded()
}

func (e *CycleError) coded() *errors.Error {
	return errors.NewCycleError(e.Node, e.Path)
}

// Resolve returns ids in an order where every id appears after all ids it
// depends on. Traversal is depth-first in declared order, visiting
// dependencies in edge order, so the result is stable for a fixed input.
//
// A cycle fails with *CycleError and no partial order. Edges naming unknown
// ids and duplicate ids fail with PLAN-004.
func Resolve(ids []string, edges []Edge) ([]string, error) {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		if known[id] {
			return nil, errors.New(errors.ErrCodePlanUnknownNode, fmt.Sprintf("duplicate node %q", id))
		}
		known[id] = true
	}

	deps := make(map[string][]string, len(ids))
	for _, e := range edges {
		for _, end := range []string{e.From, e.To} {
			if !known[end] {
				return nil, errors.New(errors.ErrCodePlanUnknownNode,
					fmt.Sprintf("dependency %s -> %s references unknown node %q", e.From, e.To, end)).
					WithSuggestion("Declare the node before referencing it in a dependency")
			}
		}
		deps[e.To] = append(deps[e.To], e.From)
	}

	visited := make(map[string]bool, len(ids))
	visiting := make(map[string]bool, len(ids))
	order := make([]string, 0, len(ids))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			return &CycleError{Node: id, Path: cyclePath(path, id)}
		}

		visiting[id] = true
		path = append(path, id)

		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		visiting[id] = false
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func cyclePath(path []string, node string) []string {
	for i, id := range path {
		if id == node {
			out := make([]string, 0, len(path)-i+1)
			out = append(out, path[i:]...)
			return append(out, node)
		}
	}
	return []string{node, node}
}

// FormatOrder renders an order for logs and CLI output.
func FormatOrder(order []string) string {
	return strings.Join(order, " -> ")
}
