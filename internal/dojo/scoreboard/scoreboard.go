package scoreboard

import (
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
)

type Scoreboard struct {
	ID          string  `yaml:"id" json:"id"`
	Name        *string `yaml:"name" json:"name,omitempty"`
	Description *string `yaml:"description" json:"description,omitempty"`
	Campaign    *string `yaml:"campaign" json:"campaign,omitempty"`
	Public      *bool   `yaml:"public" json:"public,omitempty"`
	Disabled    *bool   `yaml:"disabled" json:"disabled,omitempty"`
}

func (s *Scoreboard) Kind() dojo.Kind {
	return dojo.KindScoreboard
}

func (s *Scoreboard) Identifier() string {
	return strings.TrimSpace(s.ID)
}

func (s *Scoreboard) Validate(op dojo.Operation) error {
	if err := dojo.ValidateID(dojo.KindScoreboard, s.Identifier()); err != nil {
		return err
	}
	if op == dojo.Update {
		return nil
	}
	return dojo.Require(dojo.KindScoreboard, s.Identifier(), op, dojo.Has("name", s.Name))
}

func (s *Scoreboard) Body(_ dojo.Operation) any {
	body := *s
	body.ID = s.Identifier()
	return &body
}
