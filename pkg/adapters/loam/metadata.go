package loam

import (
	"github.com/aretw0/espalier/pkg/module"
)

// ModuleMetadata is the frontmatter of a module document.
// Field names follow the YAML keys of module.Definition.
type ModuleMetadata struct {
	Name        string               `json:"name" mapstructure:"name"`
	Description string               `json:"description" mapstructure:"description"`
	Imports     []string             `json:"imports" mapstructure:"imports"`
	Sorts       []string             `json:"sorts" mapstructure:"sorts"`
	Subsorts    []string             `json:"subsorts" mapstructure:"subsorts"`
	Ops         []module.OpDef       `json:"ops" mapstructure:"ops"`
	Vars        map[string]string    `json:"vars" mapstructure:"vars"`
	Equations   []module.RuleDef     `json:"equations" mapstructure:"equations"`
	Rules       []module.RuleDef     `json:"rules" mapstructure:"rules"`
	Strategies  []module.StrategyDef `json:"strategies" mapstructure:"strategies"`
}
