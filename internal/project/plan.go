package project

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
	"github.com/dojocodes/dojo-deploy/internal/dojo/campaign"
	"github.com/dojocodes/dojo-deploy/internal/dojo/scoreboard"
	"github.com/dojocodes/dojo-deploy/internal/dojo/scoring"
)

// Manifest is the project.yml file listing every entity reference.
type Manifest struct {
	Environments []string `yaml:"environments"`
	Challenges   []string `yaml:"challenges"`
	Campaigns    []string `yaml:"campaigns"`
	Scoreboards  []string `yaml:"scoreboards"`
	ScoringRules []string `yaml:"scoring_rules"`
}

func (m *Manifest) References(kind dojo.Kind) []string {
	switch kind {
	case dojo.KindEnvironment:
		return m.Environments
	case dojo.KindChallenge:
		return m.Challenges
	case dojo.KindCampaign:
		return m.Campaigns
	case dojo.KindScoreboard:
		return m.Scoreboards
	case dojo.KindScoringRule:
		return m.ScoringRules
	}
	return nil
}

// DefaultFile is the document looked up when a reference is a directory.
func DefaultFile(kind dojo.Kind) string {
	return string(kind) + ".yml"
}

// Entry is an entity together with the document it was loaded from.
type Entry struct {
	Entity dojo.Entity
	Source string
}

// Plan holds every entity of a project in sync order.
type Plan struct {
	Manifest string
	Entries  []Entry
}

func (p *Plan) Entities() []dojo.Entity {
	entities := make([]dojo.Entity, 0, len(p.Entries))
	for _, entry := range p.Entries {
		entities = append(entities, entry.Entity)
	}
	return entities
}

// Count returns the number of entities of kind.
func (p *Plan) Count(kind dojo.Kind) int {
	count := 0
	for _, entry := range p.Entries {
		if entry.Entity.Kind() == kind {
			count++
		}
	}
	return count
}

// LoadPlan reads the manifest and every document it references.
func (l *Loader) LoadPlan(ctx context.Context, manifestPath string) (*Plan, error) {
	doc, err := l.Load(ctx, manifestPath)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := doc.Decode(&manifest); err != nil {
		return nil, err
	}

	plan := &Plan{Manifest: doc.Location}
	seen := map[string]string{}
	for _, kind := range dojo.Kinds {
		for _, ref := range manifest.References(kind) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			location, err := l.locate(ctx, resolve(doc.Dir(), strings.TrimSpace(ref)), kind)
			if err != nil {
				return nil, err
			}
			entities, err := l.loadEntities(ctx, kind, location)
			if err != nil {
				return nil, err
			}
			for _, entity := range entities {
				key := dojo.Key(entity)
				if previous, ok := seen[key]; ok {
					return nil, fmt.Errorf("%s %q is defined twice: %s and %s", kind, entity.Identifier(), previous, location)
				}
				seen[key] = location
				plan.Entries = append(plan.Entries, Entry{Entity: entity, Source: location})
			}
		}
	}
	return plan, nil
}

// locate turns a directory reference into the kind's default document.
func (l *Loader) locate(ctx context.Context, location string, kind dojo.Kind) (string, error) {
	if ext := strings.ToLower(path.Ext(location)); ext == ".yml" || ext == ".yaml" {
		return location, nil
	}
	object, err := l.fs.Object(ctx, location)
	if err != nil {
		return "", fmt.Errorf("%s reference %s: %w", kind, location, err)
	}
	if object.IsDir() {
		return resolve(location, DefaultFile(kind)), nil
	}
	return location, nil
}

func (l *Loader) loadEntities(ctx context.Context, kind dojo.Kind, location string) ([]dojo.Entity, error) {
	doc, err := l.Load(ctx, location)
	if err != nil {
		return nil, err
	}

	switch kind {
	case dojo.KindEnvironment:
		environments, err := Environments(doc)
		if err != nil {
			return nil, err
		}
		entities := make([]dojo.Entity, 0, len(environments))
		for _, environment := range environments {
			entities = append(entities, environment)
		}
		return entities, nil
	case dojo.KindChallenge:
		challenge, err := l.Challenge(ctx, doc)
		if err != nil {
			return nil, err
		}
		return []dojo.Entity{challenge}, nil
	case dojo.KindCampaign:
		return decodeOne(doc, &campaign.Campaign{})
	case dojo.KindScoreboard:
		return decodeOne(doc, &scoreboard.Scoreboard{})
	case dojo.KindScoringRule:
		return decodeOne(doc, &scoring.Rule{})
	}
	return nil, fmt.Errorf("unsupported kind %q", kind)
}

func decodeOne(doc *Document, entity dojo.Entity) ([]dojo.Entity, error) {
	if err := doc.Decode(entity); err != nil {
		return nil, err
	}
	return []dojo.Entity{entity}, nil
}

// Filter keeps the entries whose kind is listed. An empty list keeps all.
func (p *Plan) Filter(kinds []dojo.Kind) *Plan {
	if len(kinds) == 0 {
		return p
	}
	filtered := &Plan{Manifest: p.Manifest}
	for _, entry := range p.Entries {
		if slices.Contains(kinds, entry.Entity.Kind()) {
			filtered.Entries = append(filtered.Entries, entry)
		}
	}
	return filtered
}
