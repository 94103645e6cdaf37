package dojo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	r := require.New(t)

	for name, expected := range map[string]Kind{
		"challenge":     KindChallenge,
		"Challenges":    KindChallenge,
		"environments":  KindEnvironment,
		"scoring-rule":  KindScoringRule,
		"scoring_rules": KindScoringRule,
		" campaign ":    KindCampaign,
	} {
		kind, err := ParseKind(name)
		r.NoError(err, name)
		r.Equal(expected, kind, name)
	}

	_, err := ParseKind("badge")
	r.Error(err)
}

func TestValidateID(t *testing.T) {
	r := require.New(t)

	r.NoError(ValidateID(KindChallenge, "hello-world_2.0"))
	r.ErrorIs(ValidateID(KindChallenge, ""), ErrMissingField)
	r.ErrorIs(ValidateID(KindChallenge, "-leading-dash"), ErrInvalidID)
	r.ErrorIs(ValidateID(KindChallenge, "with space"), ErrInvalidID)
	r.ErrorIs(ValidateID(KindChallenge, "slash/inside"), ErrInvalidID)
}

func TestRequireListsEveryMissingField(t *testing.T) {
	r := require.New(t)
	name := "x"

	err := Require(KindChallenge, "hello", Create,
		Has("name", &name),
		Has[string]("author", nil),
		Field{Name: "difficulty"},
	)
	r.ErrorIs(err, ErrMissingField)
	r.Contains(err.Error(), "author, difficulty")
	r.Contains(err.Error(), "for create")

	r.NoError(Require(KindChallenge, "hello", Update, Has("name", &name)))
}
