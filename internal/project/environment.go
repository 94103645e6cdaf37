package project

import (
	"fmt"
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo/environment"
	"gopkg.in/yaml.v3"
)

// Environments expands an environment document into the base environment
// followed by one environment per entry of its variants mapping.
func Environments(doc *Document) ([]*environment.Environment, error) {
	base := doc.Without("variants")
	var env environment.Environment
	if err := base.Decode(&env); err != nil {
		return nil, err
	}
	environments := []*environment.Environment{&env}

	variants := doc.Lookup("variants")
	if variants == nil {
		return environments, nil
	}
	if variants.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: variants must be a mapping of name to overrides", doc.Location)
	}

	for i := 0; i+1 < len(variants.Content); i += 2 {
		name, overrides := variants.Content[i].Value, variants.Content[i+1]
		if overrides.ShortTag() == "!!null" {
			overrides = nil
		} else if overrides.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s: variant %q must be a mapping", doc.Location, name)
		}

		var variant environment.Environment
		if err := base.Merge(overrides).Decode(&variant); err != nil {
			return nil, err
		}
		if !overridesID(overrides) {
			variant.ID = strings.TrimSpace(env.ID) + "-" + name
		}
		environments = append(environments, &variant)
	}
	return environments, nil
}

func overridesID(overrides *yaml.Node) bool {
	if overrides == nil {
		return false
	}
	for i := 0; i+1 < len(overrides.Content); i += 2 {
		if overrides.Content[i].Value == "id" {
			return true
		}
	}
	return false
}
