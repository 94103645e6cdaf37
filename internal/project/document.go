package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

const (
	includeTag = "!include"
	fileTag    = "!file"
)

var ErrIncludeCycle = errors.New("include cycle")

// Loader reads project documents through afs, so references may be local
// paths or any URL afs can serve.
type Loader struct {
	fs   afs.Service
	vars map[string]string
}

func NewLoader(vars map[string]string) *Loader {
	return &Loader{fs: afs.New(), vars: vars}
}

// Document is a parsed YAML mapping with its custom tags resolved.
type Document struct {
	Location string
	root     *yaml.Node
	// embedded holds scalars produced by !file; their value is file content
	// rather than a path.
	embedded map[*yaml.Node]bool
}

// Load reads, substitutes and parses the mapping document at location.
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	embedded := map[*yaml.Node]bool{}
	root, err := l.loadNode(ctx, normalize(location), nil, embedded)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: document must be a mapping", location)
	}
	return &Document{Location: normalize(location), root: root, embedded: embedded}, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

func (l *Loader) loadNode(ctx context.Context, location string, stack []string, embedded map[*yaml.Node]bool) (*yaml.Node, error) {
	for _, visited := range stack {
		if visited == location {
			return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, strings.Join(append(stack, location), " -> "))
		}
	}

	data, err := l.read(ctx, location)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(Substitute(string(data), l.vars)), &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse %s: empty document", location)
	}

	root := doc.Content[0]
	if err := l.resolveTags(ctx, root, parent(location), append(stack, location), embedded); err != nil {
		return nil, err
	}
	return root, nil
}

func (l *Loader) resolveTags(ctx context.Context, node *yaml.Node, dir string, stack []string, embedded map[*yaml.Node]bool) error {
	switch node.Tag {
	case includeTag, fileTag:
		if node.Kind != yaml.ScalarNode || node.Value == "" {
			return fmt.Errorf("%s:%d: %s expects a path", stack[len(stack)-1], node.Line, node.Tag)
		}
		target := resolve(dir, node.Value)
		if node.Tag == includeTag {
			included, err := l.loadNode(ctx, target, stack, embedded)
			if err != nil {
				return err
			}
			*node = *included
			return nil
		}
		data, err := l.read(ctx, target)
		if err != nil {
			return err
		}
		*node = yaml.Node{
			Kind:   yaml.ScalarNode,
			Tag:    "!!str",
			Value:  string(data),
			Line:   node.Line,
			Column: node.Column,
		}
		embedded[node] = true
		return nil
	}

	if node.Kind == yaml.AliasNode {
		return nil
	}
	for _, child := range node.Content {
		if err := l.resolveTags(ctx, child, dir, stack, embedded); err != nil {
			return err
		}
	}
	return nil
}

// Dir is the directory references in the document are resolved against.
func (d *Document) Dir() string {
	return parent(d.Location)
}

// Lookup returns the value node for key, or nil when the key is absent or null.
func (d *Document) Lookup(key string) *yaml.Node {
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		if d.root.Content[i].Value == key {
			value := d.root.Content[i+1]
			if value.ShortTag() == "!!null" {
				return nil
			}
			return value
		}
	}
	return nil
}

// IsEmbedded reports whether node holds content read through !file.
func (d *Document) IsEmbedded(node *yaml.Node) bool {
	return d.embedded[node]
}

// Decode fills out from the document. Keys out does not declare are an
// error, so a misspelt field fails loading instead of vanishing.
func (d *Document) Decode(out any) error {
	data, err := yaml.Marshal(d.root)
	if err != nil {
		return fmt.Errorf("decode %s: %w", d.Location, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", d.Location, err)
	}
	return nil
}

// Without returns a shallow copy of the document lacking the given keys.
func (d *Document) Without(keys ...string) *Document {
	drop := map[string]bool{}
	for _, key := range keys {
		drop[key] = true
	}
	root := *d.root
	root.Content = nil
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		if drop[d.root.Content[i].Value] {
			continue
		}
		root.Content = append(root.Content, d.root.Content[i], d.root.Content[i+1])
	}
	return &Document{Location: d.Location, root: &root, embedded: d.embedded}
}

// Merge returns a copy of the document with the keys of overrides replacing
// or extending its own, in place for existing keys.
func (d *Document) Merge(overrides *yaml.Node) *Document {
	root := *d.root
	root.Content = append([]*yaml.Node(nil), d.root.Content...)
	if overrides == nil {
		return &Document{Location: d.Location, root: &root, embedded: d.embedded}
	}
NEXT:
	for i := 0; i+1 < len(overrides.Content); i += 2 {
		key, value := overrides.Content[i], overrides.Content[i+1]
		for j := 0; j+1 < len(root.Content); j += 2 {
			if root.Content[j].Value == key.Value {
				root.Content[j+1] = value
				continue NEXT
			}
		}
		root.Content = append(root.Content, key, value)
	}
	return &Document{Location: d.Location, root: &root, embedded: d.embedded}
}

func hasScheme(location string) bool {
	return strings.Contains(location, "://")
}

// normalize makes local paths absolute; afs resolves relative paths
// differently from the process working directory.
func normalize(location string) string {
	if hasScheme(location) {
		return location
	}
	if abs, err := filepath.Abs(location); err == nil {
		return abs
	}
	return location
}

func resolve(dir, ref string) string {
	if hasScheme(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if i := strings.Index(dir, "://"); i >= 0 {
		return dir[:i+3] + path.Join(dir[i+3:], ref)
	}
	return filepath.Join(dir, ref)
}

func parent(location string) string {
	if i := strings.Index(location, "://"); i >= 0 {
		return location[:i+3] + path.Dir(location[i+3:])
	}
	return filepath.Dir(location)
}
