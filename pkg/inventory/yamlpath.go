package inventory

import (
	"fmt"

	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

// YAMLPath is a structural location inside a decoded YAML document: a
// sequence of map keys (strings) and list indexes (ints), e.g.
// ["spec", "template", "spec", "containers", 0, "image"].
type YAMLPath []any

// Follow walks the path through a document decoded with yaml.v3 and returns
// the value it lands on.
func (p YAMLPath) Follow(doc any) (any, error) {
	current := doc
	for i, step := range p {
		switch s := step.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("path step %d (%q): expected mapping, found %T", i, s, current)
			}
			value, ok := m[s]
			if !ok {
				return nil, fmt.Errorf("path step %d: key %q not found", i, s)
			}
			current = value
		case int:
			list, ok := current.([]any)
			if !ok {
				return nil, fmt.Errorf("path step %d (%d): expected sequence, found %T", i, s, current)
			}
			if s < 0 || s >= len(list) {
				return nil, fmt.Errorf("path step %d: index %d out of range (len %d)", i, s, len(list))
			}
			current = list[s]
		default:
			return nil, fmt.Errorf("path step %d: unsupported step type %T", i, step)
		}
	}
	return current, nil
}

func logSkip(kind, name, reason string) {
	log.Info("skipping during merge", "kind", kind, "name", name, "reason", reason)
}
