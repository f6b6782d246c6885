// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package template loads declarative condition templates and turns them into
condition trees.

A template document is YAML:

	templates:
	  - id: dml-large-change
	    title: Large data change
	    level: HIGH
	    condition:
	      all:
	        - factor: statement.sql_type
	          operator: in
	          value: [UPDATE, DELETE]
	        - factor: statement.affected_rows
	          operator: ">"
	          value: 1000

A node is either a group (all or any) or a comparison of a factor against a
value. Operators are spelled ==, !=, >, >=, <, <=, in, not_in, contains,
matches, startsWith and endsWith. [Load] validates the document against an
embedded JSON schema before decoding it.

[Template.Apply] builds the tree, typing each value by the factor catalog.
Timestamp factors take RFC 3339 strings:

	for _, t := range template.BuiltinTemplates() {
		expr, err := t.Apply(condition.DefaultCatalog())
		if err != nil {
			return err
		}
		text, err := condition.Stringify(expr)
		...
	}
*/
package template
