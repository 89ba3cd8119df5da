package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// stateFile is the persisted root selection. Kept tiny on purpose: losing it
// only means the user is asked to pick a project again.
type stateFile struct {
	ActiveRoot string `yaml:"active_root"`
}

// ReadActiveRoot returns the persisted root selection, or "" when no
// selection has been made yet.
func (p Paths) ReadActiveRoot() (string, error) {
	raw, err := os.ReadFile(p.StateFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read state file: %w", err)
	}

	var st stateFile
	if err := yaml.Unmarshal(raw, &st); err != nil {
		return "", fmt.Errorf("parse state file: %w", err)
	}
	return strings.TrimSpace(st.ActiveRoot), nil
}

// WriteActiveRoot persists the root selection, creating the data dir if
// needed.
func (p Paths) WriteActiveRoot(root string) error {
	raw, err := yaml.Marshal(stateFile{ActiveRoot: root})
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.StateFile()), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(p.StateFile(), raw, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
