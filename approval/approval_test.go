// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/condition"
)

func validFlow() Flow {
	return Flow{
		Title:       "DBA review",
		Description: "Changes to production need a DBA and an owner.",
		Steps: []Step{
			{Type: StepTypeAny, Nodes: []Node{{Role: "roles/dba"}}},
			{Type: StepTypeAll, Nodes: []Node{{GroupValue: "PROJECT_OWNER"}, {Role: "roles/lead"}}},
		},
	}
}

func TestValidateFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Flow)
		want    bool
		wantErr string
	}{
		{name: "valid", mutate: func(*Flow) {}, want: true},
		{name: "missing title", mutate: func(f *Flow) { f.Title = " " }, wantErr: "title"},
		{name: "missing description", mutate: func(f *Flow) { f.Description = "" }, wantErr: "description"},
		{name: "no steps", mutate: func(f *Flow) { f.Steps = nil }, wantErr: "at least one step"},
		{name: "step without nodes", mutate: func(f *Flow) { f.Steps[1].Nodes = nil }, wantErr: "step 2"},
		{
			name:    "node without role or group",
			mutate:  func(f *Flow) { f.Steps[1].Nodes[1] = Node{} },
			wantErr: "step 2 node 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flow := validFlow()
			tt.mutate(&flow)

			assert.Equal(t, tt.want, ValidateFlow(flow))
			err := Check(flow)
			if tt.want {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidFlow)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRule(t *testing.T) {
	t.Parallel()

	good := condition.MustCondition(condition.OpGreater, condition.FactorAffectedRows, condition.Int(100))

	tests := []struct {
		name    string
		rule    Rule
		want    bool
		wantErr error
	}{
		{name: "valid", rule: Rule{Condition: good, Flow: validFlow()}, want: true},
		{name: "nil condition", rule: Rule{Flow: validFlow()}, wantErr: ErrInvalidRule},
		{
			name: "empty group",
			rule: Rule{
				Condition: &condition.LogicalExpr{Operator: condition.OpAnd},
				Flow:      validFlow(),
			},
			wantErr: ErrInvalidRule,
		},
		{
			name: "empty value",
			rule: Rule{
				Condition: &condition.ConditionExpr{
					Operator: condition.OpEqual,
					Factor:   condition.FactorEnvironmentID,
					Value:    condition.Str(""),
				},
				Flow: validFlow(),
			},
			wantErr: ErrInvalidRule,
		},
		{name: "invalid flow", rule: Rule{Condition: good}, wantErr: ErrInvalidFlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ValidateRule(tt.rule))
			if tt.want {
				assert.NoError(t, CheckRule(tt.rule))
				return
			}
			assert.ErrorIs(t, CheckRule(tt.rule), tt.wantErr)
		})
	}
}

func TestRule_Matches(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine(condition.DefaultCatalog().EnvOptions()...)
	prod := condition.MustCondition(condition.OpEqual, condition.FactorEnvironmentID, condition.Str("prod"))
	big := condition.MustCondition(condition.OpGreater, condition.FactorAffectedRows, condition.Int(1000))
	group, err := condition.And(prod, big)
	require.NoError(t, err)
	rule := Rule{Condition: group, Flow: validFlow()}

	text, err := rule.Expression()
	require.NoError(t, err)
	assert.Equal(t, `(resource.environment_id == "prod" && statement.affected_rows > 1000)`, text)

	activation := func(env string, rows int64) map[string]any {
		return map[string]any{
			string(condition.FactorEnvironmentID): env,
			string(condition.FactorAffectedRows):  rows,
		}
	}

	matched, err := rule.Matches(engine, activation("prod", 5000))
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = rule.Matches(engine, activation("test", 5000))
	require.NoError(t, err)
	assert.False(t, matched)

	_, err = Rule{Condition: &condition.LogicalExpr{Operator: condition.OpOr}}.Matches(engine, nil)
	require.ErrorIs(t, err, condition.ErrEmptyGroup)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine(condition.DefaultCatalog().EnvOptions()...)
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	urgent := validFlow()
	urgent.Title = "Urgent"
	rules := []Rule{
		{
			Condition: condition.MustCondition(condition.OpIn, condition.FactorSQLType, condition.Strs("DROP_TABLE", "TRUNCATE")),
			Flow:      urgent,
		},
		{
			Condition: condition.MustCondition(condition.OpLess, condition.FactorExpirationTime, condition.Time(deadline)),
			Flow:      validFlow(),
		},
	}

	rule, ok, err := Select(engine, rules, map[string]any{
		string(condition.FactorSQLType):        "TRUNCATE",
		string(condition.FactorExpirationTime): deadline.Add(time.Hour),
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Urgent", rule.Flow.Title)

	rule, ok, err = Select(engine, rules, map[string]any{
		string(condition.FactorSQLType):        "SELECT",
		string(condition.FactorExpirationTime): deadline.Add(-time.Hour),
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "DBA review", rule.Flow.Title)

	_, ok, err = Select(engine, rules, map[string]any{
		string(condition.FactorSQLType):        "SELECT",
		string(condition.FactorExpirationTime): deadline.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Select(engine, rules, map[string]any{})
	require.ErrorIs(t, err, cel.ErrEvaluation)
	assert.Contains(t, err.Error(), "rule 0")
}
