// Package graph provides an undirected simple graph and the centrality
// measures used for passing-network analysis: degree, betweenness, and
// closeness.
package graph

// Graph is an undirected simple graph over string-named nodes. Nodes keep
// their insertion order so repeated runs over the same input produce
// identical output.
type Graph struct {
	index map[string]int
	nodes []string
	adj   []map[int]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		index: map[string]int{},
		nodes: []string{},
		adj:   []map[int]struct{}{},
	}
}

// AddNode adds a node if it is not already present and returns its index.
func (g *Graph) AddNode(name string) int {
	if i, exists := g.index[name]; exists {
		return i
	}
	i := len(g.nodes)
	g.index[name] = i
	g.nodes = append(g.nodes, name)
	g.adj = append(g.adj, map[int]struct{}{})
	return i
}

// AddEdge adds an undirected edge, creating either endpoint as needed.
// Duplicate edges collapse. Self-loops are kept as-is; upstream data should
// not contain them, but filtering is not this layer's call.
func (g *Graph) AddEdge(a, b string) {
	ai := g.AddNode(a)
	bi := g.AddNode(b)
	g.adj[ai][bi] = struct{}{}
	g.adj[bi][ai] = struct{}{}
}

func (g *Graph) HasNode(name string) bool {
	_, exists := g.index[name]
	return exists
}

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	count := 0
	for i, neighbors := range g.adj {
		for j := range neighbors {
			if j >= i {
				count++
			}
		}
	}
	return count
}

// DegreeCentrality returns degree/(n-1) per node. A single-node graph has no
// other nodes to connect to; the convention here is 0 rather than an error so
// one-man rosters still produce a row.
func (g *Graph) DegreeCentrality() map[string]float64 {
	out := make(map[string]float64, len(g.nodes))
	n := len(g.nodes)
	for i, name := range g.nodes {
		if n <= 1 {
			out[name] = 0
			continue
		}
		out[name] = float64(len(g.adj[i])) / float64(n-1)
	}
	return out
}

// Betweenness returns normalized betweenness centrality per node (Brandes,
// unweighted, pairs counted once, normalized by (n-1)(n-2)/2). Graphs with
// fewer than three nodes have no intermediate pairs and score 0 everywhere.
func (g *Graph) Betweenness() map[string]float64 {
	n := len(g.nodes)
	cb := make([]float64, n)

	for s := 0; s < n; s++ {
		// BFS from s recording shortest-path counts and predecessors.
		stack := make([]int, 0, n)
		preds := make([][]int, n)
		sigma := make([]float64, n)
		dist := make([]int, n)
		for i := range dist {
			dist[i] = -1
		}
		sigma[s] = 1
		dist[s] = 0
		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for w := range g.adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// Dependency accumulation in reverse BFS order.
		delta := make([]float64, n)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	out := make(map[string]float64, n)
	for i, name := range g.nodes {
		if n < 3 {
			out[name] = 0
			continue
		}
		// Each undirected pair was accumulated from both endpoints, so the
		// raw score carries a factor of 2 that the normalization absorbs.
		out[name] = cb[i] / float64((n-1)*(n-2))
	}
	return out
}

// Closeness returns Wasserman-Faust closeness centrality per node:
// (r-1)/(sum of distances) scaled by (r-1)/(n-1) for r reachable nodes.
// Disconnected graphs are fine; isolated nodes score 0.
func (g *Graph) Closeness() map[string]float64 {
	n := len(g.nodes)
	out := make(map[string]float64, n)
	for s, name := range g.nodes {
		total := 0
		reached := 0
		dist := make([]int, n)
		for i := range dist {
			dist[i] = -1
		}
		dist[s] = 0
		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			reached++
			total += dist[v]
			for w := range g.adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
			}
		}
		if reached <= 1 || total == 0 || n <= 1 {
			out[name] = 0
			continue
		}
		r := float64(reached - 1)
		out[name] = r / float64(total) * r / float64(n-1)
	}
	return out
}
