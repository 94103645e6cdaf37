package campaign

import (
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
)

// Campaign bundles challenges into an ordered route.
type Campaign struct {
	ID          string    `yaml:"id" json:"id"`
	Name        *string   `yaml:"name" json:"name,omitempty"`
	Description *string   `yaml:"description" json:"description,omitempty"`
	Disabled    *bool     `yaml:"disabled" json:"disabled,omitempty"`
	Environment *string   `yaml:"environment" json:"environment,omitempty"`
	Challenges  *[]string `yaml:"challenges" json:"challenges,omitempty"`
}

func (c *Campaign) Kind() dojo.Kind {
	return dojo.KindCampaign
}

func (c *Campaign) Identifier() string {
	return strings.TrimSpace(c.ID)
}

func (c *Campaign) Validate(op dojo.Operation) error {
	if err := dojo.ValidateID(dojo.KindCampaign, c.Identifier()); err != nil {
		return err
	}
	var challenges []string
	if c.Challenges != nil {
		challenges = *c.Challenges
	}
	for _, id := range challenges {
		if err := dojo.ValidateID(dojo.KindChallenge, id); err != nil {
			return err
		}
	}
	if op == dojo.Update {
		return nil
	}
	return dojo.Require(dojo.KindCampaign, c.Identifier(), op,
		dojo.Has("name", c.Name),
		dojo.Field{Name: "challenges", Present: len(challenges) > 0},
	)
}

func (c *Campaign) Body(_ dojo.Operation) any {
	body := *c
	body.ID = c.Identifier()
	return &body
}
