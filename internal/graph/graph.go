package graph

import (
	"errors"
	"fmt"
	"slices"
)

var ErrEmptyGraph = errors.New("graph has no nodes")
var ErrInvalidNodeID = errors.New("node id must be positive")
var ErrSelfLoop = errors.New("node is adjacent to itself")
var ErrUnknownNeighbor = errors.New("neighbor is not a node")
var ErrAsymmetric = errors.New("adjacency is not symmetric")

// Graph is an immutable node adjacency structure. It is safe for concurrent
// reads once built.
type Graph struct {
	adj map[int][]int
	ids []int
}

// New validates adjacency and builds a Graph from it. Neighbor lists are
// copied, sorted and deduplicated.
func New(adjacency map[int][]int) (*Graph, error) {
	if len(adjacency) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		adj: make(map[int][]int, len(adjacency)),
		ids: make([]int, 0, len(adjacency)),
	}

	for id, neighbors := range adjacency {
		if id <= 0 {
			return nil, fmt.Errorf("node %d: %w", id, ErrInvalidNodeID)
		}
		ns := slices.Clone(neighbors)
		slices.Sort(ns)
		ns = slices.Compact(ns)
		for _, n := range ns {
			if n == id {
				return nil, fmt.Errorf("node %d: %w", id, ErrSelfLoop)
			}
			if _, ok := adjacency[n]; !ok {
				return nil, fmt.Errorf("node %d -> %d: %w", id, n, ErrUnknownNeighbor)
			}
		}
		g.adj[id] = ns
		g.ids = append(g.ids, id)
	}
	slices.Sort(g.ids)

	for _, id := range g.ids {
		for _, n := range g.adj[id] {
			if !slices.Contains(g.adj[n], id) {
				return nil, fmt.Errorf("node %d -> %d: %w", id, n, ErrAsymmetric)
			}
		}
	}

	return g, nil
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id int) bool {
	_, ok := g.adj[id]
	return ok
}

// Adjacent reports whether to is one hop from from.
func (g *Graph) Adjacent(from, to int) bool {
	_, ok := slices.BinarySearch(g.adj[from], to)
	return ok
}

// Neighbors returns a copy of the ordered adjacency list of id.
func (g *Graph) Neighbors(id int) []int {
	return slices.Clone(g.adj[id])
}

// IDs returns every node id in ascending order.
func (g *Graph) IDs() []int {
	return slices.Clone(g.ids)
}

func (g *Graph) Len() int { return len(g.ids) }
