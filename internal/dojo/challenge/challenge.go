package challenge

import (
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
)

// Challenge is a learning exercise. Pointer fields are nil when the source
// document omits them and are then left out of the payload.
type Challenge struct {
	ID           string    `yaml:"id" json:"id"`
	Name         *string   `yaml:"name" json:"name,omitempty"`
	Description  *string   `yaml:"description" json:"description,omitempty"`
	Author       *string   `yaml:"author" json:"author,omitempty"`
	Difficulty   any       `yaml:"difficulty" json:"difficulty,omitempty"`
	Disabled     *bool     `yaml:"disabled" json:"disabled,omitempty"`
	Instructions *string   `yaml:"-" json:"instructions,omitempty"`
	Checks       any       `yaml:"-" json:"checks,omitempty"`
	Environment  *string   `yaml:"environment" json:"environment,omitempty"`
	Category     *string   `yaml:"category" json:"category,omitempty"`
	Tags         *[]string `yaml:"tags" json:"tags,omitempty"`
}

func (c *Challenge) Kind() dojo.Kind {
	return dojo.KindChallenge
}

func (c *Challenge) Identifier() string {
	return strings.TrimSpace(c.ID)
}

func (c *Challenge) Validate(op dojo.Operation) error {
	if err := dojo.ValidateID(dojo.KindChallenge, c.Identifier()); err != nil {
		return err
	}
	fields := []dojo.Field{dojo.Has("name", c.Name)}
	if op == dojo.Create {
		fields = append(fields,
			dojo.Has("description", c.Description),
			dojo.Has("author", c.Author),
			dojo.Field{Name: "difficulty", Present: c.Difficulty != nil},
			dojo.Has("disabled", c.Disabled),
			dojo.Has("instructions", c.Instructions),
		)
	}
	return dojo.Require(dojo.KindChallenge, c.Identifier(), op, fields...)
}

func (c *Challenge) Body(_ dojo.Operation) any {
	body := *c
	body.ID = c.Identifier()
	return &body
}
