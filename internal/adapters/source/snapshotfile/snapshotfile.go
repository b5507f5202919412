// Package snapshotfile loads topology snapshots from JSON or YAML files.
// Useful for offline analysis of exported controller dumps and for replaying
// a captured topology through the optimizer.
package snapshotfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/stpmap/internal/core/domain"
)

// Source implements ports.DeviceSource backed by a snapshot file.
type Source struct {
	path string
}

// New creates a file source. The format is chosen by extension:
// .yaml/.yml decode as YAML, everything else as JSON.
func New(path string) *Source {
	return &Source{path: path}
}

// Snapshot reads and decodes the snapshot file.
func (s *Source) Snapshot(ctx context.Context) (domain.TopologySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.TopologySnapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.TopologySnapshot{}, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snapshot domain.TopologySnapshot
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snapshot); err != nil {
			return domain.TopologySnapshot{}, fmt.Errorf("decoding YAML snapshot %s: %w", s.path, err)
		}
	default:
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return domain.TopologySnapshot{}, fmt.Errorf("decoding JSON snapshot %s: %w", s.path, err)
		}
	}

	return snapshot, nil
}
