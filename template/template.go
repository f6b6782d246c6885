// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/cel-conditions/condition"
	"github.com/stacklok/cel-conditions/validation/factor"
)

//go:embed data/template.schema.json data/builtin.yaml
var embeddedFS embed.FS

const schemaFile = "data/template.schema.json"

// ErrInvalidTemplate is returned when a template document does not match
// the template schema or a template cannot be applied.
var ErrInvalidTemplate = errors.New("invalid condition template")

// Level is the risk level a template suggests for rules built from it.
type Level string

// Risk levels.
const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
)

// Template is a named, reusable condition.
type Template struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Level       Level  `yaml:"level,omitempty" json:"level,omitempty"`
	Condition   Node   `yaml:"condition" json:"condition"`
}

// Node is one node of a template condition: either a group (All or Any) or
// a single comparison of Factor against Value.
type Node struct {
	All      []Node `yaml:"all,omitempty" json:"all,omitempty"`
	Any      []Node `yaml:"any,omitempty" json:"any,omitempty"`
	Factor   string `yaml:"factor,omitempty" json:"factor,omitempty"`
	Operator string `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`
}

type document struct {
	Templates []Template `yaml:"templates"`
}

// operatorNames maps the operator spelling used in template files to
// condition operators.
var operatorNames = map[string]condition.Operator{
	"==":         condition.OpEqual,
	"!=":         condition.OpNotEqual,
	">":          condition.OpGreater,
	">=":         condition.OpGreaterEqual,
	"<":          condition.OpLess,
	"<=":         condition.OpLessEqual,
	"in":         condition.OpIn,
	"not_in":     condition.OpNotIn,
	"contains":   condition.OpContains,
	"matches":    condition.OpMatches,
	"startsWith": condition.OpStartsWith,
	"endsWith":   condition.OpEndsWith,
}

// Load reads a YAML template document, validates it against the embedded
// template schema and returns its templates in document order.
func Load(r io.Reader) ([]Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	if err := ValidateBytes(asJSON); err != nil {
		return nil, err
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	seen := make(map[string]bool, len(doc.Templates))
	for _, t := range doc.Templates {
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidTemplate, t.ID)
		}
		seen[t.ID] = true
	}
	return doc.Templates, nil
}

// ValidateBytes validates a JSON template document against the template schema.
func ValidateBytes(data []byte) error {
	schemaData, err := embeddedFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return formatNumberedErrors(msgs)
}

// formatNumberedErrors formats a list of messages as a single error with a numbered list.
func formatNumberedErrors(msgs []string) error {
	if len(msgs) == 1 {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, msgs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "with %d errors:\n", len(msgs))
	for i, msg := range msgs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, msg)
	}
	return fmt.Errorf("%w %s", ErrInvalidTemplate, strings.TrimSuffix(b.String(), "\n"))
}

// Apply builds the template's condition tree. Values are typed by the
// catalog's factor types, and the result is checked against the catalog.
func (t Template) Apply(catalog condition.FactorCatalog) (condition.SimpleExpr, error) {
	expr, err := t.Condition.build(catalog)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", t.ID, err)
	}
	if err := catalog.Check(expr); err != nil {
		return nil, fmt.Errorf("template %q: %w", t.ID, err)
	}
	return expr, nil
}

func (n Node) build(catalog condition.FactorCatalog) (condition.SimpleExpr, error) {
	switch {
	case len(n.All) > 0:
		return buildGroup(catalog, condition.OpAnd, n.All)
	case len(n.Any) > 0:
		return buildGroup(catalog, condition.OpOr, n.Any)
	}

	if err := factor.ValidateName(n.Factor); err != nil {
		return nil, fmt.Errorf("%w: %w", condition.ErrInvalidFactor, err)
	}
	op, ok := operatorNames[n.Operator]
	if !ok {
		return nil, fmt.Errorf("%w: %q", condition.ErrUnsupportedOperator, n.Operator)
	}
	v, err := catalog.TypedValue(condition.Factor(n.Factor), n.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Factor, err)
	}
	return condition.NewCondition(op, condition.Factor(n.Factor), v)
}

func buildGroup(catalog condition.FactorCatalog, op condition.Operator, nodes []Node) (condition.SimpleExpr, error) {
	args := make([]condition.SimpleExpr, 0, len(nodes))
	for _, child := range nodes {
		e, err := child.build(catalog)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return condition.NewGroup(op, args...)
}

var builtin = sync.OnceValues(func() ([]Template, error) {
	f, err := embeddedFS.Open("data/builtin.yaml")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
})

// BuiltinTemplates returns the templates shipped with the module. The
// returned slice is a copy.
func BuiltinTemplates() []Template {
	templates, err := builtin()
	if err != nil {
		panic(fmt.Sprintf("built-in templates are invalid: %v", err))
	}
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}
