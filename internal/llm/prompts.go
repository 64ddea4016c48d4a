package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Request context labels recorded on audit records, one per generation
// function. The owning entity's name is appended where one exists.
const (
	categoryRequestContext  = "category_generation"
	techStackRequestContext = "techstack_generation"
	parameterRequestContext = "parameter_generation"
)

// CategoryRequestContext labels a category generation request.
func CategoryRequestContext() string {
	return categoryRequestContext
}

// TechStackRequestContext labels a tech stack generation request for a
// category.
func TechStackRequestContext(categoryName string) string {
	return techStackRequestContext + ":" + categoryName
}

// ParameterRequestContext labels a parameter generation request for a stack.
func ParameterRequestContext(techStackName string) string {
	return parameterRequestContext + ":" + techStackName
}

// PromptBuilder builds prompts for generation functions.
type PromptBuilder struct {
	templates map[Function]*template.Template
}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() (*PromptBuilder, error) {
	pb := &PromptBuilder{
		templates: make(map[Function]*template.Template),
	}

	templates := map[Function]string{
		FunctionGenerateCategories: generateCategoriesTemplate,
		FunctionGenerateTechStacks: generateTechStacksTemplate,
		FunctionGenerateParameters: generateParametersTemplate,
	}

	for fn, tmpl := range templates {
		t, err := template.New(string(fn)).Funcs(templateFuncs).Parse(tmpl)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", fn, err)
		}
		pb.templates[fn] = t
	}

	return pb, nil
}

// Build builds a prompt for the given function and data.
func (pb *PromptBuilder) Build(fn Function, data any) (string, error) {
	t, ok := pb.templates[fn]
	if !ok {
		return "", fmt.Errorf("unknown function: %s", fn)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// templateFuncs provides template helper functions.
//
//nolint:gochecknoglobals // Template functions are inherently global
var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"indent": func(indent int, s string) string {
		prefix := strings.Repeat("  ", indent)
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			if line != "" {
				lines[i] = prefix + line
			}
		}
		return strings.Join(lines, "\n")
	},
	"sub": func(a, b int) int {
		return a - b
	},
}

// CategoriesPromptInput is the input for GenerateCategories.
type CategoriesPromptInput struct {
	Count         int
	ExistingNames []string
}

const generateCategoriesTemplate = `You are an expert technology consultant curating a catalog of
software technology categories.

## Task
Propose {{.Count}} technology categories for organizing tech stacks in a
software project configuration catalog. Categories group related
technologies, for example backend frameworks, databases or message brokers.
{{- if .ExistingNames}}

## Existing Categories
The catalog already contains these categories. Do not propose any of them
again:
{{- range .ExistingNames}}
- {{.}}
{{- end}}
{{- end}}

## Instructions
1. Each category must cover a distinct area of a software project
2. Names must be short and conventional (e.g. "Backend", "Database")
3. Descriptions must say what belongs in the category in one or two sentences
4. Order categories by how central they are to a typical project

Respond with a JSON array only, no surrounding prose, matching this schema:
[
  {
    "name": "string - short category name",
    "description": "string - what belongs in this category",
    "display_order": number
  }
]`

// TechStacksPromptInput is the input for GenerateTechStacks.
type TechStacksPromptInput struct {
	Count               int
	CategoryName        string
	CategoryDescription string
	ExistingNames       []string
}

const generateTechStacksTemplate = `You are an expert technology consultant curating a catalog of
software technologies.

## Task
Propose {{.Count}} technologies for the following category.

## Category
Name: {{.CategoryName}}
{{- if .CategoryDescription}}
Description: {{.CategoryDescription}}
{{- end}}
{{- if .ExistingNames}}

## Existing Technologies
The category already contains these technologies. Do not propose any of them
again:
{{- range .ExistingNames}}
- {{.}}
{{- end}}
{{- end}}

## Instructions
1. Propose widely used, production-proven technologies that fit the category
2. Use the technology's official name (e.g. "PostgreSQL", not "postgres db")
3. Descriptions must say what the technology is and when to choose it
4. default_version, when given, must be a plain version number (e.g. "16.4")
5. documentation_url, when given, must be the official documentation site

Respond with a JSON array only, no surrounding prose, matching this schema:
[
  {
    "name": "string - official technology name",
    "description": "string - what it is and when to choose it",
    "default_version": "string - optional version number",
    "documentation_url": "string - optional official docs URL"
  }
]`

// ParametersPromptInput is the input for GenerateParameters.
type ParametersPromptInput struct {
	Count                int
	TechStackName        string
	TechStackDescription string
	CategoryName         string
	ExistingNames        []string
}

const generateParametersTemplate = `You are an expert technology consultant defining configuration
parameters for a technology in a project configuration catalog.

## Task
Propose {{.Count}} configuration parameters an engineering team would set
when adopting the following technology in a project.

## Technology
Name: {{.TechStackName}}
{{- if .CategoryName}}
Category: {{.CategoryName}}
{{- end}}
{{- if .TechStackDescription}}
Description: {{.TechStackDescription}}
{{- end}}
{{- if .ExistingNames}}

## Existing Parameters
The technology already has these parameters. Do not propose any of them
again:
{{- range .ExistingNames}}
- {{.}}
{{- end}}
{{- end}}

## Instructions
1. Parameter names use snake_case (e.g. "pool_size", "ssl_mode")
2. type must be one of: text, number, boolean, choice, version
3. allowed_values is required for choice parameters and forbidden otherwise
4. default_value, when given, must be valid for the declared type
5. Mark a parameter required only when the technology cannot run without it

Respond with a JSON array only, no surrounding prose, matching this schema:
[
  {
    "name": "string - snake_case parameter name",
    "description": "string - what the parameter controls",
    "type": "text|number|boolean|choice|version",
    "is_required": true|false,
    "default_value": "string - optional default, valid for the type",
    "allowed_values": ["string - only for choice parameters"],
    "display_order": number
  }
]`
