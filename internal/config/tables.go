package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/elemcore/internal/contrib"
)

// TablesFile is the on-disk layout of static bonus tables.
type TablesFile struct {
	Tables []TableFile `yaml:"tables"`
}

// TableFile is one static contributor table.
type TableFile struct {
	SystemID string               `yaml:"system_id"`
	Priority int64                `yaml:"priority"`
	Default  BonusFile            `yaml:"default"`
	Actors   map[string]BonusFile `yaml:"actors"`
}

// BonusFile is a set of flat deltas.
type BonusFile struct {
	Omni     map[string]float64            `yaml:"omni"`
	Elements map[string]map[string]float64 `yaml:"elements"`
	Scaling  map[string]map[string]float64 `yaml:"scaling"`
}

func (b BonusFile) bonus() contrib.Bonus {
	return contrib.Bonus{Omni: b.Omni, Elements: b.Elements, Scaling: b.Scaling}
}

// Table converts the file entry into a contrib.Table.
func (t TableFile) Table() contrib.Table {
	out := contrib.Table{
		SystemID: t.SystemID,
		Priority: t.Priority,
		Default:  t.Default.bonus(),
	}
	if len(t.Actors) > 0 {
		out.Actors = make(map[string]contrib.Bonus, len(t.Actors))
		for id, b := range t.Actors {
			out.Actors[id] = b.bonus()
		}
	}
	return out
}

// LoadTables loads static bonus tables from a YAML file.
// If the file doesn't exist, returns no tables.
func LoadTables(path string) ([]contrib.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tables %s: %w", path, err)
	}

	var f TablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tables %s: %w", path, err)
	}

	tables := make([]contrib.Table, 0, len(f.Tables))
	for _, t := range f.Tables {
		tables = append(tables, t.Table())
	}
	return tables, nil
}
