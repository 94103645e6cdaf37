package project

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
	"github.com/dojocodes/dojo-deploy/internal/dojo/campaign"
	"github.com/dojocodes/dojo-deploy/internal/dojo/challenge"
	"github.com/dojocodes/dojo-deploy/internal/dojo/environment"
	"github.com/dojocodes/dojo-deploy/internal/dojo/scoring"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	location := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(location), 0o755))
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))
	return location
}

func TestSubstitute(t *testing.T) {
	r := require.New(t)
	vars := Variables("octocat", "neo", map[string]string{"org": "dojo", "github_username": "ignored"})

	r.Equal(
		"https://github.com/octocat/dojo for neo, ${unknown} stays",
		Substitute("https://github.com/${github_username}/${org} for ${dojo_username}, ${unknown} stays", vars),
	)
	r.Equal("${github_username}", Substitute("${github_username}", Variables("", "", nil)))
}

func TestLoaderResolvesIncludeAndFileTags(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "shared/limits.yml", "cpu: 2\nowner: ${github_username}\n")
	writeFile(t, dir, "shared/motd.txt", "welcome ${github_username}")
	location := writeFile(t, dir, "doc.yml", "limits: !include shared/limits.yml\nmotd: !file shared/motd.txt\n")

	doc, err := NewLoader(Variables("octocat", "", nil)).Load(context.Background(), location)
	r.NoError(err)
	r.Nil(doc.Lookup("missing"))

	var decoded struct {
		Limits map[string]any `yaml:"limits"`
		Motd   string         `yaml:"motd"`
	}
	r.NoError(doc.Decode(&decoded))
	r.Equal(map[string]any{"cpu": 2, "owner": "octocat"}, decoded.Limits)
	// !file keeps the raw text
	r.Equal("welcome ${github_username}", decoded.Motd)
	r.True(doc.IsEmbedded(doc.Lookup("motd")))
	r.False(doc.IsEmbedded(doc.Lookup("limits")))
}

func TestLoaderDetectsIncludeCycle(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "a.yml", "b: !include b.yml\n")
	writeFile(t, dir, "b.yml", "a: !include a.yml\n")

	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(dir, "a.yml"))
	r.ErrorIs(err, ErrIncludeCycle)
}

func TestLoaderRejectsNonMappingDocument(t *testing.T) {
	r := require.New(t)
	location := writeFile(t, t.TempDir(), "list.yml", "- a\n- b\n")

	_, err := NewLoader(nil).Load(context.Background(), location)
	r.ErrorContains(err, "document must be a mapping")
}

func TestLoadChallengeReadsInstructionsAndChecks(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "README.md", "# Fork github.com/${github_username}/hello")
	writeFile(t, dir, "README.fr.md", "# Bonjour")
	writeFile(t, dir, "checks.yml", "- name: repo exists\n  url: https://github.com/${github_username}/hello\n")
	location := writeFile(t, dir, "challenge.yml", `id: "  hello  "
name: Hello ${github_username}
description: First steps
author: neo
difficulty: 1
disabled: false
instructions:
  en: README.md
  fr: README.fr.md
checks: checks.yml
`)

	loader := NewLoader(Variables("octocat", "neo", nil))
	doc, err := loader.Load(context.Background(), location)
	r.NoError(err)

	c, err := loader.Challenge(context.Background(), doc)
	r.NoError(err)
	r.Equal("hello", c.Identifier())
	r.Equal("Hello octocat", *c.Name)
	r.Equal(1, c.Difficulty)
	r.False(*c.Disabled)
	r.Equal("# Fork github.com/${github_username}/hello", *c.Instructions)
	r.Equal([]any{map[string]any{"name": "repo exists", "url": "https://github.com/octocat/hello"}}, c.Checks)
	r.Nil(c.Category)
	r.NoError(c.Validate(dojo.Create))
}

func TestLoadChallengeInlineAndEmbeddedValues(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "checks.yml", "http: 200\n")
	writeFile(t, dir, "README.md", "inline me")
	location := writeFile(t, dir, "challenge.yml", `id: hello
instructions:
  en: !file README.md
checks: !file checks.yml
`)

	loader := NewLoader(nil)
	doc, err := loader.Load(context.Background(), location)
	r.NoError(err)

	c, err := loader.Challenge(context.Background(), doc)
	r.NoError(err)
	r.Equal("inline me", *c.Instructions)
	r.Equal(map[string]any{"http": 200}, c.Checks)
}

func TestLoadChallengeRejectsScalarChecks(t *testing.T) {
	r := require.New(t)
	location := writeFile(t, t.TempDir(), "challenge.yml", "id: hello\nchecks: 42\n")

	loader := NewLoader(nil)
	doc, err := loader.Load(context.Background(), location)
	r.NoError(err)

	_, err = loader.Challenge(context.Background(), doc)
	r.ErrorContains(err, "checks must be a file path or a structured value")
}

func TestLoadChallengeEmptyInstructionsMapping(t *testing.T) {
	r := require.New(t)
	location := writeFile(t, t.TempDir(), "challenge.yml", "id: hello\ninstructions: {}\n")

	loader := NewLoader(nil)
	doc, err := loader.Load(context.Background(), location)
	r.NoError(err)

	c, err := loader.Challenge(context.Background(), doc)
	r.NoError(err)
	r.Nil(c.Instructions)
	r.Nil(c.Checks)
}

func TestEnvironmentVariants(t *testing.T) {
	r := require.New(t)
	location := writeFile(t, t.TempDir(), "environment.yml", `id: python
name: Python
image: dojo/python:3.12
ports: [8080]
variants:
  slim:
    image: dojo/python:3.12-slim
  gpu:
    id: python-cuda
    name: Python (GPU)
  plain:
`)

	doc, err := NewLoader(nil).Load(context.Background(), location)
	r.NoError(err)

	environments, err := Environments(doc)
	r.NoError(err)
	r.Len(environments, 4)

	r.Equal("python", environments[0].ID)
	r.Equal("dojo/python:3.12", *environments[0].Image)

	r.Equal("python-slim", environments[1].ID)
	r.Equal("Python", *environments[1].Name)
	r.Equal("dojo/python:3.12-slim", *environments[1].Image)
	r.Equal([]int{8080}, *environments[1].Ports)

	r.Equal("python-cuda", environments[2].ID)
	r.Equal("Python (GPU)", *environments[2].Name)
	r.Equal("dojo/python:3.12", *environments[2].Image)

	r.Equal("python-plain", environments[3].ID)
}

func TestLoadPlan(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "environments/python/environment.yml", "id: python\nname: Python\nimage: py\nvariants:\n  slim: {image: py-slim}\n")
	writeFile(t, dir, "challenges/hello/challenge.yml", "id: hello\nname: Hello\nenvironment: python\ninstructions: Say hello\n")
	writeFile(t, dir, "campaigns/intro.yaml", "id: intro\nname: Intro\nchallenges: [hello]\n")
	writeFile(t, dir, "scoring/solve.yml", "id: solve\nscoreboard: global\npoints: 10\n")
	writeFile(t, dir, "scoreboards/global/scoreboard.yml", "id: global\nname: Global\ncampaign: intro\n")
	manifest := writeFile(t, dir, "project.yml", `scoring_rules: [scoring/solve.yml]
scoreboards: [scoreboards/global]
campaigns: [campaigns/intro.yaml]
challenges: [challenges/hello]
environments: [environments/python]
`)

	plan, err := NewLoader(nil).LoadPlan(context.Background(), manifest)
	r.NoError(err)

	var keys []string
	for _, entity := range plan.Entities() {
		keys = append(keys, dojo.Key(entity))
	}
	r.Equal([]string{
		"environment/python",
		"environment/python-slim",
		"challenge/hello",
		"campaign/intro",
		"scoreboard/global",
		"scoring_rule/solve",
	}, keys)

	r.IsType(&environment.Environment{}, plan.Entries[0].Entity)
	r.IsType(&challenge.Challenge{}, plan.Entries[2].Entity)
	r.Equal([]string{"hello"}, *plan.Entries[3].Entity.(*campaign.Campaign).Challenges)
	r.Equal(10, *plan.Entries[5].Entity.(*scoring.Rule).Points)
	r.Equal(filepath.Join(dir, "challenges/hello/challenge.yml"), plan.Entries[2].Source)
	r.Equal(2, plan.Count(dojo.KindEnvironment))

	filtered := plan.Filter([]dojo.Kind{dojo.KindChallenge, dojo.KindCampaign})
	r.Len(filtered.Entries, 2)
	r.Len(plan.Entries, 6)
}

func TestLoadPlanRejectsDuplicates(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "a.yml", "id: intro\nname: A\n")
	writeFile(t, dir, "b.yml", "id: intro\nname: B\n")
	manifest := writeFile(t, dir, "project.yml", "campaigns: [a.yml, b.yml]\n")

	_, err := NewLoader(nil).LoadPlan(context.Background(), manifest)
	r.ErrorContains(err, `campaign "intro" is defined twice`)
}

func TestLoadPlanMissingReference(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	manifest := writeFile(t, dir, "project.yml", "challenges: [challenges/missing]\n")

	_, err := NewLoader(nil).LoadPlan(context.Background(), manifest)
	r.Error(err)
}

func TestLoadChallengeRejectsUnknownKeys(t *testing.T) {
	r := require.New(t)
	location := writeFile(t, t.TempDir(), "challenge.yml", "id: hello\nname: Hello\ndescripton: typo\n")

	loader := NewLoader(nil)
	doc, err := loader.Load(context.Background(), location)
	r.NoError(err)

	_, err = loader.Challenge(context.Background(), doc)
	r.ErrorContains(err, "descripton")
}

func TestLoadChallengeBuildsJSONReadyBody(t *testing.T) {
	r := require.New(t)
	location := writeFile(t, t.TempDir(), "challenge.yml", `id: hello
name: Hello
difficulty: {1: easy}
tags: []
checks: {1: first, nested: [{2: second}]}
`)

	loader := NewLoader(nil)
	doc, err := loader.Load(context.Background(), location)
	r.NoError(err)

	c, err := loader.Challenge(context.Background(), doc)
	r.NoError(err)
	r.Equal(map[string]any{"1": "first", "nested": []any{map[string]any{"2": "second"}}}, c.Checks)

	data, err := json.Marshal(c.Body(dojo.Update))
	r.NoError(err)
	r.JSONEq(`{
		"id": "hello",
		"name": "Hello",
		"difficulty": {"1": "easy"},
		"tags": [],
		"checks": {"1": "first", "nested": [{"2": "second"}]}
	}`, string(data))
}

func TestLoadPlanRejectsUnknownManifestKeys(t *testing.T) {
	r := require.New(t)
	manifest := writeFile(t, t.TempDir(), "project.yml", "challenge: [hello]\n")

	_, err := NewLoader(nil).LoadPlan(context.Background(), manifest)
	r.ErrorContains(err, "challenge")
}
