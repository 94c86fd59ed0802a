package bpmn

import (
	"strings"

	"github.com/expr-lang/expr"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// checkExpressionSyntax compile-checks the inner expression of a `${...}`
// condition body. The expression is never evaluated; process variables are
// unknown at analysis time, so undefined identifiers are allowed. Bodies not
// using the `${...}` form are left to the process engine to interpret.
func checkExpressionSyntax(body, category string, subject model.FileRef) []lint.Item {
	inner, ok := unwrapExpression(body)
	if !ok {
		return nil
	}
	if strings.TrimSpace(inner) == "" {
		return []lint.Item{lint.Warnf(category, subject,
			"condition expression %q is empty", body)}
	}

	if _, err := expr.Compile(inner, expr.AllowUndefinedVariables()); err != nil {
		return []lint.Item{lint.Warnf(category, subject,
			"condition expression %q does not parse: %v", body, err)}
	}
	return []lint.Item{lint.Successf(category, subject,
		"condition expression %q parses", body)}
}

// unwrapExpression strips the ${...} wrapper, reporting whether body used it.
func unwrapExpression(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") {
		return trimmed[2 : len(trimmed)-1], true
	}
	return "", false
}
