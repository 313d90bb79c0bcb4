package service

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sevenway/internal/core/domain"
)

type sequenceStepYaml struct {
	Channels    []string `yaml:"channels"`
	DwellMillis uint32   `yaml:"dwell_millis"`
}

type sequencesFileYaml struct {
	Sequences map[string][]sequenceStepYaml `yaml:"sequences"`
}

// LoadSequences reads custom test patterns from a yaml file. Patterns
// start from the built-in set; a file entry with a known name replaces
// that pattern, a new name adds one. Channel names are the short forms
// (brake, tail, left, right, aux, reverse); an empty channel list is an
// all-off step.
func LoadSequences(path string) (map[string]Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequences file: %w", err)
	}

	var file sequencesFileYaml
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sequences file: %w", err)
	}

	sequences := BuiltinSequences()
	for name, stepsYaml := range file.Sequences {
		if len(stepsYaml) == 0 {
			return nil, fmt.Errorf("sequence %q has no steps", name)
		}
		steps := make([]SequenceStep, 0, len(stepsYaml))
		for i, stepYaml := range stepsYaml {
			if stepYaml.DwellMillis == 0 {
				return nil, fmt.Errorf("sequence %q step %d: dwell_millis must be > 0", name, i+1)
			}
			channels := make([]domain.Channel, 0, len(stepYaml.Channels))
			for _, chName := range stepYaml.Channels {
				ch, ok := domain.ChannelByName(chName)
				if !ok {
					return nil, fmt.Errorf("sequence %q step %d: unknown channel %q", name, i+1, chName)
				}
				channels = append(channels, ch)
			}
			steps = append(steps, SequenceStep{
				Channels: channels,
				Dwell:    time.Duration(stepYaml.DwellMillis) * time.Millisecond,
			})
		}
		sequences[name] = Sequence{Name: name, Steps: steps}
	}

	return sequences, nil
}
