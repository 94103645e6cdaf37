package dojo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
)

// Kind is an entity type managed on the dojo platform. Its value is also the
// collection path segment on the API.
type Kind string

const (
	KindEnvironment Kind = "environment"
	KindChallenge   Kind = "challenge"
	KindCampaign    Kind = "campaign"
	KindScoreboard  Kind = "scoreboard"
	KindScoringRule Kind = "scoring_rule"
)

// Kinds lists every kind in sync order: referenced entities come first.
var Kinds = []Kind{
	KindEnvironment,
	KindChallenge,
	KindCampaign,
	KindScoreboard,
	KindScoringRule,
}

func (k Kind) Path() string {
	return "/" + string(k)
}

func (k Kind) String() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// ParseKind accepts singular or plural names, with dashes or underscores.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, kind := range Kinds {
		if normalized == string(kind) || normalized == string(kind)+"s" {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", name)
}

// Operation is the mutation chosen after the existence probe.
type Operation int

const (
	Create Operation = iota
	Update
)

func (o Operation) String() string {
	if o == Update {
		return "update"
	}
	return "create"
}

// Entity is a record that can be pushed to the API.
type Entity interface {
	Kind() Kind
	Identifier() string
	// Validate checks the fields required by op.
	Validate(op Operation) error
	// Body returns the JSON payload for op, restricted to the fields op may send.
	Body(op Operation) any
}

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidID    = errors.New("invalid id")
	ErrInvalidValue = errors.New("invalid value")
)

const idPattern = `^[A-Za-z0-9][A-Za-z0-9_.-]*$`

func ValidateID(kind Kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s: %w: id", kind, ErrMissingField)
	}
	if !govalidator.Matches(id, idPattern) {
		return fmt.Errorf("%s %q: %w: must match %s", kind, id, ErrInvalidID, idPattern)
	}
	return nil
}

// Field records whether a named field was set in the source document.
type Field struct {
	Name    string
	Present bool
}

func Has[T any](name string, value *T) Field {
	return Field{Name: name, Present: value != nil}
}

// Require fails with ErrMissingField listing every absent field.
func Require(kind Kind, id string, op Operation, fields ...Field) error {
	var missing []string
	for _, field := range fields {
		if !field.Present {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s %q: %w for %s: %s", kind, id, ErrMissingField, op, strings.Join(missing, ", "))
}

// NonNegative fails with ErrInvalidValue when a set value is below zero.
func NonNegative(kind Kind, id, name string, value *int) error {
	if value != nil && *value < 0 {
		return fmt.Errorf("%s %q: %w: %s must not be negative", kind, id, ErrInvalidValue, name)
	}
	return nil
}

// Key identifies an entity across kinds.
func Key(entity Entity) string {
	return string(entity.Kind()) + "/" + entity.Identifier()
}
