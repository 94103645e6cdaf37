package project

import (
	"context"
	"fmt"

	"github.com/dojocodes/dojo-deploy/internal/dojo/challenge"
	"gopkg.in/yaml.v3"
)

// Challenge decodes a challenge document and resolves its instructions and
// checks, which may live in sibling files.
func (l *Loader) Challenge(ctx context.Context, doc *Document) (*challenge.Challenge, error) {
	var c challenge.Challenge
	if err := doc.Without("instructions", "checks").Decode(&c); err != nil {
		return nil, err
	}
	c.Difficulty = jsonValue(c.Difficulty)

	instructions, err := l.instructions(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.Instructions = instructions

	checks, err := l.checks(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.Checks = checks
	return &c, nil
}

// instructions accepts inline text, or a mapping such as {en: README.md}
// whose first entry names the file holding the text.
func (l *Loader) instructions(ctx context.Context, doc *Document) (*string, error) {
	node := doc.Lookup("instructions")
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		text := node.Value
		return &text, nil
	case yaml.MappingNode:
		if len(node.Content) < 2 {
			return nil, nil
		}
		first := node.Content[1]
		if first.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s: instructions entry %q must name a file", doc.Location, node.Content[0].Value)
		}
		if doc.IsEmbedded(first) {
			text := first.Value
			return &text, nil
		}
		data, err := l.read(ctx, resolve(doc.Dir(), first.Value))
		if err != nil {
			return nil, err
		}
		text := string(data)
		return &text, nil
	}
	return nil, fmt.Errorf("%s: instructions must be text or a mapping of language to file", doc.Location)
}

// checks accepts a path to a YAML file or an already structured value.
func (l *Loader) checks(ctx context.Context, doc *Document) (any, error) {
	node := doc.Lookup("checks")
	if node == nil {
		return nil, nil
	}

	var source *yaml.Node
	switch {
	case node.Kind == yaml.MappingNode || node.Kind == yaml.SequenceNode:
		source = node
	case node.Kind == yaml.ScalarNode && doc.IsEmbedded(node):
		var parsed yaml.Node
		if err := yaml.Unmarshal([]byte(node.Value), &parsed); err != nil {
			return nil, fmt.Errorf("%s: parse embedded checks: %w", doc.Location, err)
		}
		if len(parsed.Content) == 0 {
			return nil, nil
		}
		source = parsed.Content[0]
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str":
		loaded, err := l.loadNode(ctx, resolve(doc.Dir(), node.Value), []string{doc.Location}, map[*yaml.Node]bool{})
		if err != nil {
			return nil, err
		}
		source = loaded
	default:
		return nil, fmt.Errorf("%s: checks must be a file path or a structured value", doc.Location)
	}

	var checks any
	if err := source.Decode(&checks); err != nil {
		return nil, fmt.Errorf("%s: decode checks: %w", doc.Location, err)
	}
	return jsonValue(checks), nil
}
