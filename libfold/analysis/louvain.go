package analysis

import "sort"

// gainEpsilon is the smallest modularity gain that justifies moving a node.
const gainEpsilon = 1e-12

// Louvain partitions g by greedy modularity optimisation: local moving followed by aggregation,
// repeated until no node moves.  Nodes are visited in index order so the result is deterministic.
// Communities are returned sorted internally and ordered by their lowest node.
func (g *Graph) Louvain() [][]int {
	n := g.NumNodes()
	member := make([]int, n)
	for i := range member {
		member[i] = i
	}

	level := g
	for {
		comm, moved := level.localMoving()
		if !moved {
			break
		}
		k := renumber(comm)
		for i := range member {
			member[i] = comm[member[i]]
		}
		level = level.aggregate(comm, k)
	}

	groups := make(map[int][]int)
	for node, c := range member {
		groups[c] = append(groups[c], node)
	}
	parts := make([][]int, 0, len(groups))
	for _, nodes := range groups {
		parts = append(parts, nodes)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i][0] < parts[j][0] })
	return parts
}

// localMoving moves single nodes between communities until no move improves modularity.
func (g *Graph) localMoving() ([]int, bool) {
	n := g.NumNodes()
	comm := make([]int, n)
	tot := make([]float64, n)
	for i := range comm {
		comm[i] = i
		tot[i] = g.deg[i]
	}
	if g.m2 == 0 {
		return comm, false
	}

	moved := false
	links := make(map[int]float64)
	var cands []int
	for {
		moves := 0
		for u := 0; u < n; u++ {
			cu := comm[u]

			for k := range links {
				delete(links, k)
			}
			cands = cands[:0]
			for _, a := range g.adj[u] {
				if a.to == u {
					continue
				}
				c := comm[a.to]
				if _, seen := links[c]; !seen {
					cands = append(cands, c)
				}
				links[c] += a.w
			}
			sort.Ints(cands)

			tot[cu] -= g.deg[u]
			best := cu
			bestGain := links[cu] - tot[cu]*g.deg[u]/g.m2
			for _, c := range cands {
				if gain := links[c] - tot[c]*g.deg[u]/g.m2; gain > bestGain+gainEpsilon {
					best, bestGain = c, gain
				}
			}
			tot[best] += g.deg[u]
			comm[u] = best

			if best != cu {
				moves++
			}
		}
		if moves == 0 {
			break
		}
		moved = true
	}
	return comm, moved
}

// renumber maps community labels onto 0..k-1 in order of first appearance, returning k.
func renumber(comm []int) int {
	ids := make(map[int]int)
	for i, c := range comm {
		id, found := ids[c]
		if !found {
			id = len(ids)
			ids[c] = id
		}
		comm[i] = id
	}
	return len(ids)
}

// aggregate collapses each community into a single node; internal weight becomes a self-loop.
func (g *Graph) aggregate(comm []int, k int) *Graph {
	weights := make([]map[int]float64, k)
	for i := range weights {
		weights[i] = make(map[int]float64)
	}
	for u, arcs := range g.adj {
		cu := comm[u]
		for _, a := range arcs {
			cv := comm[a.to]
			switch {
			case cu != cv:
				weights[cu][cv] += a.w
			case a.to == u:
				weights[cu][cu] += a.w
			default:
				weights[cu][cu] += a.w / 2 // each internal pair is seen from both ends
			}
		}
	}
	return newGraph(weights)
}
