package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JobSpec 스케줄 작업 정의
type JobSpec struct {
	Name    string   `yaml:"name"`
	Cron    string   `yaml:"cron"`
	Command string   `yaml:"command"` // ingest, screen, export
	Args    []string `yaml:"args"`
}

// Schedule schedule.yaml 구조
type Schedule struct {
	Timezone   string    `yaml:"timezone"`
	RunOnStart bool      `yaml:"run_on_start"`
	Jobs       []JobSpec `yaml:"jobs"`
}

// LoadSchedule reads the schedule file.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return ParseSchedule(data)
}

// ParseSchedule parses schedule YAML and validates job entries.
func ParseSchedule(data []byte) (*Schedule, error) {
	s := &Schedule{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	if s.Timezone == "" {
		s.Timezone = "Asia/Seoul"
	}

	seen := make(map[string]bool, len(s.Jobs))
	for i, job := range s.Jobs {
		if job.Name == "" {
			return nil, fmt.Errorf("job #%d: name is required", i+1)
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("job %s: duplicate name", job.Name)
		}
		seen[job.Name] = true
		if job.Cron == "" {
			return nil, fmt.Errorf("job %s: cron is required", job.Name)
		}
		switch job.Command {
		case "ingest", "screen", "export":
		default:
			return nil, fmt.Errorf("job %s: unknown command %q", job.Name, job.Command)
		}
	}

	return s, nil
}
