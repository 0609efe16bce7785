package dag

import (
	stderrors "errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// genDAG draws ids with edges only from lower to higher generation index,
// then shuffles the declared order.
func genDAG(t *rapid.T) ([]string, []Edge) {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i)
	}

	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("edge-%d-%d", i, j)) {
				edges = append(edges, Edge{From: ids[i], To: ids[j]})
			}
		}
	}

	declared := rapid.Permutation(ids).Draw(t, "declared")
	return declared, edges
}

func TestResolveOrdersEveryEdgeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids, edges := genDAG(t)

		order, err := Resolve(ids, edges)
		if err != nil {
			t.Fatalf("acyclic graph rejected: %v", err)
		}
		if len(order) != len(ids) {
			t.Fatalf("order has %d ids, want %d", len(order), len(ids))
		}

		pos := make(map[string]int, len(order))
		for i, id := range order {
			pos[id] = i
		}
		for _, e := range edges {
			if pos[e.From] >= pos[e.To] {
				t.Fatalf("%s placed after %s in %v", e.From, e.To, order)
			}
		}
	})
}

func TestResolveRejectsCyclesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids, edges := genDAG(t)
		k := rapid.IntRange(1, 5).Draw(t, "cycle")

		ring := make([]string, k)
		for i := range ring {
			ring[i] = fmt.Sprintf("r%d", i)
		}
		for i := range ring {
			edges = append(edges, Edge{From: ring[i], To: ring[(i+1)%k]})
		}
		ids = rapid.Permutation(append(ids, ring...)).Draw(t, "declared")

		order, err := Resolve(ids, edges)
		if order != nil {
			t.Fatalf("partial order returned: %v", order)
		}

		var cycle *CycleError
		if !stderrors.As(err, &cycle) {
			t.Fatalf("error = %v, want *CycleError", err)
		}
		onRing := false
		for _, r := range ring {
			if r == cycle.Node {
				onRing = true
			}
		}
		if !onRing {
			t.Fatalf("cycle node %s is not on the ring %v", cycle.Node, ring)
		}
	})
}
