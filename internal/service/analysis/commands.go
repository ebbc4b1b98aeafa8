package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/panbanda/devflow/pkg/models"
)

// LoadCommands reads command usage counts from a YAML or JSON file. The file
// is either a list of {command, count} records or a map of command to count.
// An empty path yields no commands.
func LoadCommands(path string) ([]models.CommandUsage, error) {
	if path == "" {
		return []models.CommandUsage{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	usage, err := ParseCommands(data)
	if err != nil {
		return nil, fmt.Errorf("parse commands %s: %w", path, err)
	}
	return usage, nil
}

// ParseCommands decodes command usage. Entries with a blank command or a
// non-positive count are dropped; duplicate commands are summed.
func ParseCommands(data []byte) ([]models.CommandUsage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.CommandUsage{}, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return []models.CommandUsage{}, nil
	}
	root := node.Content[0]

	var raw []models.CommandUsage
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var m map[string]int
		if err := root.Decode(&m); err != nil {
			return nil, err
		}
		for cmd, n := range m {
			raw = append(raw, models.CommandUsage{Command: cmd, Count: n})
		}
	default:
		return nil, errors.New("expected a list or a map of command counts")
	}

	counts := make(map[string]int, len(raw))
	for _, u := range raw {
		cmd := strings.Join(strings.Fields(u.Command), " ")
		if cmd == "" || u.Count <= 0 {
			continue
		}
		counts[cmd] += u.Count
	}
	usage := make([]models.CommandUsage, 0, len(counts))
	for cmd, n := range counts {
		usage = append(usage, models.CommandUsage{Command: cmd, Count: n})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].Command < usage[j].Command
	})
	return usage, nil
}
