package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped output directory for one experiment.
func NewWriter(name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join("experiments", name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) WritePlannerConfigs(configs []PlannerConfig) error {
	path := filepath.Join(w.baseDir, "planner_configs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create planner configs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "samples", "max_depth", "lookahead", "seed"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write planner configs header: %w", err)
	}

	for _, config := range configs {
		row := []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Samples),
			strconv.Itoa(config.MaxDepth),
			strconv.Itoa(config.Lookahead),
			strconv.FormatUint(config.Seed, 10),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write planner config row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteMissionRecords(records []MissionRecord) error {
	path := filepath.Join(w.baseDir, "mission_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mission records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "config", "reward", "steps", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write mission records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Config),
			strconv.FormatFloat(record.Reward, 'f', -1, 64),
			strconv.Itoa(record.Steps),
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write mission record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteStepRecords(records []StepRecord) error {
	path := filepath.Join(w.baseDir, "step_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create step records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"mission", "step", "duration", "samples", "rollout_steps"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write step records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Mission),
			strconv.Itoa(record.Step),
			record.Duration.String(),
			strconv.FormatInt(record.Samples, 10),
			strconv.FormatInt(record.RolloutSteps, 10),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write step record row: %w", err)
		}
	}

	return nil
}
