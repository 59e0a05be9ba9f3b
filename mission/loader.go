package mission

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// NodeRecord is one mission node as produced by an external scenario loader:
// an identifier, an agent-presence flag, a reward, a coordinate pair, and
// parallel lists describing the paths to neighboring nodes.
type NodeRecord struct {
	ID        int            `json:"node_id" yaml:"node_id"`
	HasAgent  int            `json:"has_agent" yaml:"has_agent"`
	Reward    float64        `json:"node_reward" yaml:"node_reward"`
	X         float64        `json:"x" yaml:"x"`
	Y         float64        `json:"y" yaml:"y"`
	Neighbors []int          `json:"connectivity" yaml:"connectivity"`
	Costs     []float64      `json:"costs" yaml:"costs"`
	Paths     [][][2]float64 `json:"paths" yaml:"paths"`
}

// DecodeJSONMission reads a JSON array of node records and assembles the
// mission map and initial agent placements.
func DecodeJSONMission(r io.Reader) (*Graph, []int, error) {
	var records []NodeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("failed to decode mission records: %w", err)
	}
	return BuildMission(records)
}

// DecodeYAMLMission reads a YAML list of node records and assembles the
// mission map and initial agent placements.
func DecodeYAMLMission(r io.Reader) (*Graph, []int, error) {
	var records []NodeRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("failed to decode mission records: %w", err)
	}
	return BuildMission(records)
}

// BuildMission validates node records and populates the environment graph
// and the list of locations holding an agent, in record order.
func BuildMission(records []NodeRecord) (*Graph, []int, error) {
	graph := NewGraph()
	var agents []int

	for _, record := range records {
		if _, ok := graph.Location(record.ID); ok {
			return nil, nil, fmt.Errorf("duplicate node id %d", record.ID)
		}
		if len(record.Costs) != len(record.Neighbors) {
			return nil, nil, fmt.Errorf("node %d: %d neighbors but %d costs",
				record.ID, len(record.Neighbors), len(record.Costs))
		}
		if len(record.Paths) != 0 && len(record.Paths) != len(record.Neighbors) {
			return nil, nil, fmt.Errorf("node %d: %d neighbors but %d trajectories",
				record.ID, len(record.Neighbors), len(record.Paths))
		}
		graph.AddLocation(record.ID, record.Reward, Coord{X: record.X, Y: record.Y})
		if record.HasAgent != 0 {
			agents = append(agents, record.ID)
		}
	}

	known := make(map[int]bool, len(records))
	for _, record := range records {
		known[record.ID] = true
	}
	for _, record := range records {
		for i, neighbor := range record.Neighbors {
			if !known[neighbor] {
				return nil, nil, fmt.Errorf("node %d: undefined neighbor %d", record.ID, neighbor)
			}
			var trajectory []Coord
			if len(record.Paths) > 0 {
				for _, point := range record.Paths[i] {
					trajectory = append(trajectory, Coord{X: point[0], Y: point[1]})
				}
			}
			graph.AddPath(record.ID, neighbor, record.Costs[i], trajectory...)
		}
	}

	return graph, agents, nil
}
