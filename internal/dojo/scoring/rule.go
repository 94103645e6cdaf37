package scoring

import (
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
)

// Rule awards points on a scoreboard, optionally for a single challenge.
type Rule struct {
	ID         string  `yaml:"id" json:"id"`
	Name       *string `yaml:"name" json:"name,omitempty"`
	Scoreboard *string `yaml:"scoreboard" json:"scoreboard,omitempty"`
	Challenge  *string `yaml:"challenge" json:"challenge,omitempty"`
	Points     *int    `yaml:"points" json:"points,omitempty"`
	Bonus      *int    `yaml:"bonus" json:"bonus,omitempty"`
	FirstBlood *int    `yaml:"first_blood" json:"first_blood,omitempty"`
}

func (r *Rule) Kind() dojo.Kind {
	return dojo.KindScoringRule
}

func (r *Rule) Identifier() string {
	return strings.TrimSpace(r.ID)
}

func (r *Rule) Validate(op dojo.Operation) error {
	id := r.Identifier()
	if err := dojo.ValidateID(dojo.KindScoringRule, id); err != nil {
		return err
	}
	for name, value := range map[string]*int{"points": r.Points, "bonus": r.Bonus, "first_blood": r.FirstBlood} {
		if err := dojo.NonNegative(dojo.KindScoringRule, id, name, value); err != nil {
			return err
		}
	}
	if op == dojo.Update {
		return nil
	}
	return dojo.Require(dojo.KindScoringRule, id, op,
		dojo.Has("scoreboard", r.Scoreboard),
		dojo.Has("points", r.Points),
	)
}

// Body drops the scoreboard on update: a rule cannot move between scoreboards.
func (r *Rule) Body(op dojo.Operation) any {
	body := *r
	body.ID = r.Identifier()
	if op == dojo.Update {
		body.Scoreboard = nil
	}
	return &body
}
