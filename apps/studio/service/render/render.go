// Package render turns a fully-resolved profile into the artifact files an
// AI coding assistant consumes. Inputs arrive already validated and
// dereferenced; this package only formats text.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Artifact filenames.
const (
	InstructionsFilename = "assistant-instructions.md"
	PolicyFilename       = "engineering-policy.md"
)

// Input is the fully-resolved data shape the templates consume.
type Input struct {
	ProfileName    string
	Description    string
	ProjectName    string
	TargetTeamSize int
	GeneratedAt    time.Time
	TechStacks     []TechStackEntry
	Patterns       []PatternEntry
	Rules          []RuleEntry
}

// TechStackEntry is one resolved tech stack reference.
type TechStackEntry struct {
	Name             string
	CategoryName     string
	Description      string
	DefaultVersion   string
	DocumentationURL string
	Values           []ValueEntry
}

// ValueEntry is one resolved parameter value.
type ValueEntry struct {
	Name  string
	Type  string
	Value string
}

// PatternEntry is one resolved architecture pattern reference.
type PatternEntry struct {
	Name                  string
	Description           string
	Guidelines            string
	ComplexityLevel       int
	SuitableForSmallTeams bool
	SuitableForLargeScale bool
}

// RuleEntry is one resolved engineering rule reference.
type RuleEntry struct {
	Name        string
	Description string
	Rationale   string
	Severity    string
	Scope       string
	IsEnforced  bool
}

// Artifact is one generated file.
type Artifact struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Renderer produces profile artifacts from templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer creates a renderer with all artifact templates parsed.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	sources := map[string]string{
		InstructionsFilename: instructionsTemplate,
		PolicyFilename:       policyTemplate,
	}
	for name, source := range sources {
		tmpl, err := template.New(name).Funcs(renderFuncs).Parse(source)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render produces all artifacts for the given input.
func (r *Renderer) Render(input *Input) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(r.templates))
	for _, name := range []string{InstructionsFilename, PolicyFilename} {
		content, err := r.render(name, input)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Filename: name, Content: content})
	}
	return artifacts, nil
}

func (r *Renderer) render(name string, input *Input) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("no template registered for %s", name)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, input); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}

// WriteArtifacts writes artifacts into a directory, creating it if needed.
func WriteArtifacts(dir string, artifacts []Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	for _, artifact := range artifacts {
		path := filepath.Join(dir, artifact.Filename)
		if err := os.WriteFile(path, []byte(artifact.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", artifact.Filename, err)
		}
	}
	return nil
}

//nolint:gochecknoglobals // template helpers are shared read-only state
var renderFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"join": func(items []string, sep string) string {
		return strings.Join(items, sep)
	},
}

const instructionsTemplate = `# AI Assistant Instructions: {{ .ProjectName }}

Generated from profile "{{ .ProfileName }}" on {{ .GeneratedAt.Format "2006-01-02" }}.
{{- if .Description }}

{{ .Description }}
{{- end }}

## Technology Stack

Use only the technologies listed here. Do not introduce alternatives without
an explicit request.
{{ range .TechStacks }}
### {{ .Name }}{{ if .CategoryName }} ({{ .CategoryName }}){{ end }}
{{- if .Description }}
{{ .Description }}
{{- end }}
{{- if .DefaultVersion }}
- Version: {{ .DefaultVersion }}
{{- end }}
{{- if .DocumentationURL }}
- Documentation: {{ .DocumentationURL }}
{{- end }}
{{- range .Values }}
- {{ .Name }}: {{ .Value }}
{{- end }}
{{ end }}
## Architecture
{{ range .Patterns }}
### {{ .Name }}
{{- if .Description }}
{{ .Description }}
{{- end }}
{{- if .Guidelines }}

Guidelines:
{{ .Guidelines }}
{{- end }}
{{ end }}
## Engineering Rules

Follow every rule below. Rules marked MUST are enforced; violating them
fails review.
{{ range .Rules }}
- [{{ if .IsEnforced }}MUST{{ else }}SHOULD{{ end }}] {{ .Name }}{{ if .Description }}: {{ .Description }}{{ end }}
{{- end }}
`

const policyTemplate = `# Engineering Policy: {{ .ProjectName }}

Generated from profile "{{ .ProfileName }}" on {{ .GeneratedAt.Format "2006-01-02" }}.
{{- if gt .TargetTeamSize 0 }}

Target team size: {{ .TargetTeamSize }}
{{- end }}

## Rules
{{ range .Rules }}
### {{ .Name }}

- Severity: {{ upper .Severity }}
- Scope: {{ .Scope }}
- Enforced: {{ if .IsEnforced }}yes{{ else }}no{{ end }}
{{- if .Description }}

{{ .Description }}
{{- end }}
{{- if .Rationale }}

Rationale: {{ .Rationale }}
{{- end }}
{{ end }}
## Architecture Constraints
{{ range .Patterns }}
- {{ .Name }} (complexity {{ .ComplexityLevel }}/5
{{- if .SuitableForSmallTeams }}, fits small teams{{ end }}
{{- if .SuitableForLargeScale }}, fits large scale{{ end }})
{{- end }}
`
