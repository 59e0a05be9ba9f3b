package mission

// Coord is an opaque planar coordinate; the planner never interprets it, it
// only carries it for external renderers.
type Coord struct {
	X float64
	Y float64
}

// Location is one rewarded node of the mission map.
type Location struct {
	ID     int
	Reward float64
	Coord  Coord
}

// Path is a directed, costed connection between two locations, optionally
// annotated with a geometric trajectory.
type Path struct {
	From       int
	To         int
	Cost       float64
	Trajectory []Coord
}

// Graph is the mission map: rewarded locations joined by directed paths. It
// must not change during a planning episode; every state clone shares it
// read-only.
type Graph struct {
	locations map[int]*Location
	outgoing  map[int][]*Path
}

func NewGraph() *Graph {
	return &Graph{
		locations: make(map[int]*Location),
		outgoing:  make(map[int][]*Path),
	}
}

// AddLocation adds a location with the given reward and coordinates,
// replacing any previous definition of the same id.
func (g *Graph) AddLocation(id int, reward float64, coord Coord) {
	g.locations[id] = &Location{ID: id, Reward: reward, Coord: coord}
}

// AddPath adds a directed path with the given cost and optional trajectory.
func (g *Graph) AddPath(from, to int, cost float64, trajectory ...Coord) {
	g.outgoing[from] = append(g.outgoing[from], &Path{
		From:       from,
		To:         to,
		Cost:       cost,
		Trajectory: trajectory,
	})
}

// Location looks up a location by id.
func (g *Graph) Location(id int) (*Location, bool) {
	loc, ok := g.locations[id]
	return loc, ok
}

// Reward returns the reward at a location. Referencing an undefined location
// is a malformed-input fault and panics.
func (g *Graph) Reward(id int) float64 {
	return g.locations[id].Reward
}

// Coordinate returns the coordinates of a location.
func (g *Graph) Coordinate(id int) Coord {
	return g.locations[id].Coord
}

// Cost returns the cost of the path from one location to another.
func (g *Graph) Cost(from, to int) (float64, bool) {
	for _, path := range g.outgoing[from] {
		if path.To == to {
			return path.Cost, true
		}
	}
	return 0, false
}

// OutgoingPaths lists the paths leaving a location.
func (g *Graph) OutgoingPaths(id int) []*Path {
	return g.outgoing[id]
}

// NumLocations reports how many locations the map holds.
func (g *Graph) NumLocations() int {
	return len(g.locations)
}

// Rewards returns every location's reward, keyed by location id.
func (g *Graph) Rewards() map[int]float64 {
	rewards := make(map[int]float64, len(g.locations))
	for id, loc := range g.locations {
		rewards[id] = loc.Reward
	}
	return rewards
}

// Coordinates returns every location's coordinates, keyed by location id.
func (g *Graph) Coordinates() map[int]Coord {
	coords := make(map[int]Coord, len(g.locations))
	for id, loc := range g.locations {
		coords[id] = loc.Coord
	}
	return coords
}

// Costs returns every path's cost, keyed by (from, to).
func (g *Graph) Costs() map[[2]int]float64 {
	costs := make(map[[2]int]float64)
	for _, paths := range g.outgoing {
		for _, path := range paths {
			costs[[2]int{path.From, path.To}] = path.Cost
		}
	}
	return costs
}

// Trajectories returns the trajectory of every path that carries one, keyed
// by (from, to).
func (g *Graph) Trajectories() map[[2]int][]Coord {
	trajectories := make(map[[2]int][]Coord)
	for _, paths := range g.outgoing {
		for _, path := range paths {
			if len(path.Trajectory) > 0 {
				trajectories[[2]int{path.From, path.To}] = path.Trajectory
			}
		}
	}
	return trajectories
}
