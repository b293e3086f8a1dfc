package analysis

import (
	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// SAdjacency joins two nodes when they share at least s hyperedges.  s below 1 is treated as 1.
func SAdjacency(snap *hyperfold.Snapshot, s int) [][]int {
	if s < 1 {
		s = 1
	}
	n := snap.NumNodes()
	shared := make([]map[int]int, n)
	for _, e := range snap.Edges() {
		for i, u := range e.Nodes {
			for _, v := range e.Nodes[i+1:] {
				if shared[u] == nil {
					shared[u] = make(map[int]int)
				}
				shared[u][v]++
			}
		}
	}

	adj := make([][]int, n)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if shared[u][v] >= s {
				adj[u] = append(adj[u], v)
				adj[v] = append(adj[v], u)
			}
		}
	}
	return adj
}

// Betweenness returns the normalized betweenness centrality of every node of an unweighted undirected graph
// (Brandes' algorithm).  Scores are scaled by 1/((n-1)(n-2)) so they fall in [0, 1].
func Betweenness(adj [][]int) map[int]float64 {
	n := len(adj)
	score := make([]float64, n)

	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)

	for src := 0; src < n; src++ {
		for i := 0; i < n; i++ {
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		sigma[src] = 1
		dist[src] = 0

		order := arraystack.New()
		queue := linkedlistqueue.New()
		queue.Enqueue(src)
		for !queue.Empty() {
			item, _ := queue.Dequeue()
			u := item.(int)
			order.Push(u)
			for _, v := range adj[u] {
				if dist[v] < 0 {
					dist[v] = dist[u] + 1
					queue.Enqueue(v)
				}
				if dist[v] == dist[u]+1 {
					sigma[v] += sigma[u]
					preds[v] = append(preds[v], u)
				}
			}
		}

		for !order.Empty() {
			item, _ := order.Pop()
			w := item.(int)
			for _, u := range preds[w] {
				delta[u] += sigma[u] / sigma[w] * (1 + delta[w])
			}
			if w != src {
				score[w] += delta[w]
			}
		}
	}

	scale := 0.0
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}
	out := make(map[int]float64, n)
	for i, sc := range score {
		out[i] = sc * scale
	}
	return out
}
