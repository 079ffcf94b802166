package access

import (
	_ "embed"
	"fmt"

	"buildportal/internal/domain/models"

	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var rolesFile []byte

// capabilityFile mirrors roles.yaml
type capabilityFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// CapabilityTable is the static role → action matrix. It is read-only after
// construction and safe for concurrent use.
type CapabilityTable struct {
	allowed map[models.Role]map[Action]struct{}
}

// NewCapabilityTable loads the embedded role matrix
func NewCapabilityTable() (*CapabilityTable, error) {
	return ParseCapabilityTable(rolesFile)
}

// ParseCapabilityTable builds a table from YAML. Unknown role or action
// names are rejected so a typo cannot silently drop a rule.
func ParseCapabilityTable(data []byte) (*CapabilityTable, error) {
	var file capabilityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal role capabilities: %w", err)
	}

	table := &CapabilityTable{
		allowed: make(map[models.Role]map[Action]struct{}, len(file.Roles)),
	}
	for name, actions := range file.Roles {
		role := models.Role(name)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in capability table", name)
		}
		set := make(map[Action]struct{}, len(actions))
		for _, a := range actions {
			action := Action(a)
			if !action.Known() {
				return nil, fmt.Errorf("unknown action %q for role %s", a, name)
			}
			set[action] = struct{}{}
		}
		table.allowed[role] = set
	}

	return table, nil
}

// Permitted reports whether role may attempt action at all
func (t *CapabilityTable) Permitted(role models.Role, action Action) bool {
	actions, ok := t.allowed[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}
