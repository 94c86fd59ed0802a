package bpmn

import (
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// checkGateway requires a name on splitting gateways (more than one outgoing
// flow) so reports can describe the decision point.
func (d *Dispatcher) checkGateway(graph *model.ProcessGraph, node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item

	outgoing := node.Outgoing
	if len(outgoing) == 0 {
		for _, f := range graph.FlowsFrom(node.Id) {
			outgoing = append(outgoing, f.Id)
		}
	}

	if len(outgoing) > 1 {
		if node.Name == "" {
			items = append(items, lint.Error(lint.CategoryGateway, subject,
				"splitting gateway needs a name"))
		} else {
			items = append(items, lint.Success(lint.CategoryGateway, subject,
				"splitting gateway has a name"))
		}
	}
	return items
}

// checkSequenceFlow requires a condition expression on non-default flows
// leaving a splitting gateway, and syntax checks the expression when present.
func (d *Dispatcher) checkSequenceFlow(graph *model.ProcessGraph, node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item

	source := graph.NodeById(node.SourceRef)
	if source == nil || !source.IsGateway() {
		return items
	}
	// Event-based gateways route by event occurrence, not conditions.
	if source.Type == model.NodeEventBasedGateway {
		return items
	}
	if len(graph.FlowsFrom(source.Id)) <= 1 {
		return items
	}
	if node.Id != "" && node.Id == source.DefaultFlow {
		return items
	}

	if node.ConditionExpression == "" {
		items = append(items, lint.Errorf(lint.CategoryGateway, subject,
			"non-default flow leaving gateway %s needs a condition expression", source.Id))
	} else {
		items = append(items, lint.Successf(lint.CategoryGateway, subject,
			"flow leaving gateway %s has a condition expression", source.Id))
		items = append(items, checkExpressionSyntax(node.ConditionExpression, lint.CategoryGateway, subject)...)
	}
	return items
}
