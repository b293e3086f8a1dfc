// Package analysis scores fold snapshots as graphs: community detection, modularity, conductance and s-betweenness.
//
// Community questions are answered on the weighted two-section of a snapshot, where every pair of nodes
// sharing a hyperedge of size k is joined with weight 1/(k-1), so each hyperedge contributes the same
// total degree to each of its members.
package analysis

import (
	"sort"

	"github.com/2x3systems/hyperfold/hyperfold"
)

type arc struct {
	to int
	w  float64
}

// Graph is a weighted undirected graph with sorted adjacency lists.
type Graph struct {
	adj [][]arc
	deg []float64
	m2  float64 // total degree, i.e. twice the total edge weight
}

// TwoSection projects snap onto its weighted two-section.
func TwoSection(snap *hyperfold.Snapshot) *Graph {
	n := snap.NumNodes()
	weights := make([]map[int]float64, n)
	for _, e := range snap.Edges() {
		k := len(e.Nodes)
		if k < 2 {
			continue
		}
		w := 1 / float64(k-1)
		for i, u := range e.Nodes {
			for _, v := range e.Nodes[i+1:] {
				if weights[u] == nil {
					weights[u] = make(map[int]float64)
				}
				if weights[v] == nil {
					weights[v] = make(map[int]float64)
				}
				weights[u][v] += w
				weights[v][u] += w
			}
		}
	}
	return newGraph(weights)
}

func newGraph(weights []map[int]float64) *Graph {
	g := &Graph{
		adj: make([][]arc, len(weights)),
		deg: make([]float64, len(weights)),
	}
	for u, nbrs := range weights {
		arcs := make([]arc, 0, len(nbrs))
		for v, w := range nbrs {
			arcs = append(arcs, arc{v, w})
		}
		sort.Slice(arcs, func(i, j int) bool { return arcs[i].to < arcs[j].to })
		g.adj[u] = arcs
		for _, a := range arcs {
			g.deg[u] += a.w
			if a.to == u {
				g.deg[u] += a.w // a self-loop adds to both ends
			}
		}
		g.m2 += g.deg[u]
	}
	return g
}

func (g *Graph) NumNodes() int {
	return len(g.adj)
}

// Weight returns the weight joining u and v.
func (g *Graph) Weight(u, v int) float64 {
	arcs := g.adj[u]
	i := sort.Search(len(arcs), func(i int) bool { return arcs[i].to >= v })
	if i < len(arcs) && arcs[i].to == v {
		return arcs[i].w
	}
	return 0
}

// Degree returns the weighted degree of u.
func (g *Graph) Degree(u int) float64 {
	return g.deg[u]
}

// membership maps each node to the index of the part containing it.
// Nodes in no part get a community of their own.
func (g *Graph) membership(parts [][]int) []int {
	comm := make([]int, g.NumNodes())
	for i := range comm {
		comm[i] = -1
	}
	for c, part := range parts {
		for _, n := range part {
			if n >= 0 && n < len(comm) {
				comm[n] = c
			}
		}
	}
	next := len(parts)
	for i, c := range comm {
		if c < 0 {
			comm[i] = next
			next++
		}
	}
	return comm
}

// Modularity returns the Newman modularity of the given partition.
func (g *Graph) Modularity(parts [][]int) float64 {
	if g.m2 == 0 {
		return 0
	}
	comm := g.membership(parts)

	in := make(map[int]float64)
	tot := make(map[int]float64)
	for u, arcs := range g.adj {
		tot[comm[u]] += g.deg[u]
		for _, a := range arcs {
			if comm[a.to] == comm[u] {
				in[comm[u]] += a.w
				if a.to == u {
					in[comm[u]] += a.w
				}
			}
		}
	}

	q := 0.0
	for c, t := range tot {
		frac := t / g.m2
		q += in[c]/g.m2 - frac*frac
	}
	return q
}

// Conductance returns cut(S) / min(vol(S), vol(V\S)), or 0 when either side has no volume.
func (g *Graph) Conductance(subset []int) float64 {
	inside := make([]bool, g.NumNodes())
	for _, n := range subset {
		if n >= 0 && n < len(inside) {
			inside[n] = true
		}
	}

	cut, vol := 0.0, 0.0
	for u, arcs := range g.adj {
		if !inside[u] {
			continue
		}
		vol += g.deg[u]
		for _, a := range arcs {
			if !inside[a.to] {
				cut += a.w
			}
		}
	}

	denom := vol
	if rest := g.m2 - vol; rest < denom {
		denom = rest
	}
	if denom <= 0 {
		return 0
	}
	return cut / denom
}
