package environment

import (
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
)

// Environment is a reusable execution context referenced by challenges.
type Environment struct {
	ID          string             `yaml:"id" json:"id"`
	Name        *string            `yaml:"name" json:"name,omitempty"`
	Description *string            `yaml:"description" json:"description,omitempty"`
	Image       *string            `yaml:"image" json:"image,omitempty"`
	Variables   *map[string]string `yaml:"variables" json:"variables,omitempty"`
	Ports       *[]int             `yaml:"ports" json:"ports,omitempty"`
	CPU         *float64           `yaml:"cpu" json:"cpu,omitempty"`
	Memory      *string            `yaml:"memory" json:"memory,omitempty"`
	Disabled    *bool              `yaml:"disabled" json:"disabled,omitempty"`
}

func (e *Environment) Kind() dojo.Kind {
	return dojo.KindEnvironment
}

func (e *Environment) Identifier() string {
	return strings.TrimSpace(e.ID)
}

func (e *Environment) Validate(op dojo.Operation) error {
	if err := dojo.ValidateID(dojo.KindEnvironment, e.Identifier()); err != nil {
		return err
	}
	if op == dojo.Update {
		return nil
	}
	return dojo.Require(dojo.KindEnvironment, e.Identifier(), op,
		dojo.Has("name", e.Name),
		dojo.Has("image", e.Image),
	)
}

func (e *Environment) Body(_ dojo.Operation) any {
	body := *e
	body.ID = e.Identifier()
	return &body
}
