// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/condition"
)

// ErrInvalidFlow is returned by Check for a flow that is missing a required field.
var ErrInvalidFlow = errors.New("invalid approval flow")

// ErrInvalidRule is returned by CheckRule for a rule whose condition is not valid.
var ErrInvalidRule = errors.New("invalid approval rule")

// StepType says how many of a step's nodes must approve.
type StepType string

// Step types.
const (
	StepTypeAny StepType = "ANY"
	StepTypeAll StepType = "ALL"
)

// Flow is an ordered list of approval steps.
type Flow struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Steps       []Step `json:"steps" yaml:"steps"`
}

// Step is one stage of a flow. It passes once its nodes approve.
type Step struct {
	Type  StepType `json:"type,omitempty" yaml:"type,omitempty"`
	Nodes []Node   `json:"nodes" yaml:"nodes"`
}

// Node names who may approve a step: a role or a group.
type Node struct {
	Role       string `json:"role,omitempty" yaml:"role,omitempty"`
	GroupValue string `json:"groupValue,omitempty" yaml:"groupValue,omitempty"`
}

// Rule applies a flow to every request its condition matches.
type Rule struct {
	Condition condition.SimpleExpr
	Flow      Flow
}

// ValidateFlow reports whether flow has a title, a description, at least one
// step, at least one node per step and a role or group on every node.
func ValidateFlow(flow Flow) bool {
	return Check(flow) == nil
}

// Check returns an error naming the first missing field of flow, or nil if
// ValidateFlow would accept it.
func Check(flow Flow) error {
	if strings.TrimSpace(flow.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidFlow)
	}
	if strings.TrimSpace(flow.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidFlow)
	}
	if len(flow.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrInvalidFlow)
	}
	for i, step := range flow.Steps {
		if len(step.Nodes) == 0 {
			return fmt.Errorf("%w: step %d has no approvers", ErrInvalidFlow, i+1)
		}
		for j, node := range step.Nodes {
			if node.Role == "" && node.GroupValue == "" {
				return fmt.Errorf("%w: step %d node %d needs a role or a group", ErrInvalidFlow, i+1, j+1)
			}
		}
	}
	return nil
}

// ValidateRule reports whether the rule's flow passes ValidateFlow and its
// condition passes condition.Validate.
func ValidateRule(rule Rule) bool {
	return CheckRule(rule) == nil
}

// CheckRule returns the first problem ValidateRule would reject rule for.
func CheckRule(rule Rule) error {
	if !condition.Validate(rule.Condition) {
		return fmt.Errorf("%w: condition is incomplete", ErrInvalidRule)
	}
	return Check(rule.Flow)
}

// Expression renders the rule's condition as CEL.
func (r Rule) Expression() (string, error) {
	return condition.Stringify(r.Condition)
}

// Matches evaluates the rule's condition against activation. The engine must
// declare every factor the condition uses, for example with
// cel.NewEngine(condition.DefaultCatalog().EnvOptions()...).
func (r Rule) Matches(engine *cel.Engine, activation map[string]any) (bool, error) {
	text, err := r.Expression()
	if err != nil {
		return false, err
	}
	compiled, err := engine.Compile(text)
	if err != nil {
		return false, err
	}
	return compiled.EvaluateBool(activation)
}

// Select returns the first rule whose condition matches activation, in rule
// order. ok is false when no rule matches.
func Select(engine *cel.Engine, rules []Rule, activation map[string]any) (rule Rule, ok bool, err error) {
	for i, r := range rules {
		matched, err := r.Matches(engine, activation)
		if err != nil {
			return Rule{}, false, fmt.Errorf("rule %d: %w", i, err)
		}
		if matched {
			return r, true, nil
		}
	}
	return Rule{}, false, nil
}
