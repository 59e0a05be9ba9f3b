package mission

// GridGraph builds a width x height 4-connected grid map with row-major
// location ids, a uniform path cost between neighbors, and per-cell rewards.
func GridGraph(width, height int, cost float64, reward func(x, y int) float64) *Graph {
	graph := NewGraph()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			graph.AddLocation(y*width+x, reward(x, y), Coord{X: float64(x), Y: float64(y)})
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			id := y*width + x
			if x+1 < width {
				graph.AddPath(id, id+1, cost)
			}
			if x > 0 {
				graph.AddPath(id, id-1, cost)
			}
			if y+1 < height {
				graph.AddPath(id, id+width, cost)
			}
			if y > 0 {
				graph.AddPath(id, id-width, cost)
			}
		}
	}
	return graph
}
