package intrinsics

import (
	_ "embed"

	"github.com/goccy/go-yaml"
)

//go:embed intrinsics.yaml
var inventoryYAML []byte

// inventoryEntry mirrors one list item in intrinsics.yaml.
type inventoryEntry struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params"`
	Returns string   `yaml:"returns"`
}

type inventoryFile struct {
	Intrinsics []inventoryEntry `yaml:"intrinsics"`
}

// LoadInventory parses the embedded human-readable inventory file.
func LoadInventory() ([]inventoryEntry, error) {
	var f inventoryFile
	if err := yaml.Unmarshal(inventoryYAML, &f); err != nil {
		return nil, err
	}
	return f.Intrinsics, nil
}
