// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"testing"
)

func TestTopologicalSort_Empty(t *testing.T) {
	t.Parallel()

	g := New()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}
	if len(order) != 0 {
		t.Errorf("TopologicalSort() = %v, want empty", order)
	}
}

func TestTopologicalSort_Linear(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("asset_root", "work_area")
	g.AddEdge("work_area", "texture_export_area")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}

	want := []string{"asset_root", "work_area", "texture_export_area"}
	if len(order) != len(want) {
		t.Fatalf("TopologicalSort() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("TopologicalSort()[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("root", "left")
	g.AddEdge("root", "right")
	g.AddEdge("left", "leaf")
	g.AddEdge("right", "leaf")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos["root"] > pos["left"] || pos["root"] > pos["right"] {
		t.Errorf("root must come before its dependents, got order %v", order)
	}
	if pos["left"] > pos["leaf"] || pos["right"] > pos["leaf"] {
		t.Errorf("leaf must come last, got order %v", order)
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("TopologicalSort() succeeded on cyclic graph, want CycleError")
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("TopologicalSort() error = %T, want *CycleError", err)
	}
	if len(cycleErr.Cycle) == 0 {
		t.Error("CycleError.Cycle is empty, want cycle members")
	}
}

func TestTopologicalSort_SelfReference(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("a", "a")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("TopologicalSort() error = %T, want *CycleError", err)
	}
}

func TestTopologicalSort_DisconnectedNodes(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("standalone")
	g.AddEdge("a", "b")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}
	if len(order) != 3 {
		t.Errorf("TopologicalSort() returned %d nodes, want 3", len(order))
	}
}

func TestAddNode_Idempotent(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("a")
	g.AddNode("a")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}
	if len(order) != 1 {
		t.Errorf("TopologicalSort() returned %d nodes, want 1", len(order))
	}
}
