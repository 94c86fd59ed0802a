package bpmn

import (
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// checkImplementedTask validates service and send tasks: a declared
// implementation class must exist and satisfy the generation's service task
// contract. Delegate-expression implementations resolve at process run time
// and cannot be verified statically.
func (d *Dispatcher) checkImplementedTask(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item

	impl := node.Implementation
	if impl == nil {
		return append(items, lint.Errorf(lint.CategoryProcess, subject,
			"%s declares no implementation", node.Type))
	}

	switch impl.Kind {
	case model.ImplementationClass:
		if impl.Ref == "" {
			items = append(items, lint.Errorf(lint.CategoryProcess, subject,
				"%s declares an empty implementation class", node.Type))
			break
		}
		if d.verifier != nil {
			contract := d.rules.Contracts(d.generation).ServiceTask
			items = append(items, d.checkCapability(impl.Ref, contract, "implementation", subject))
		}
	case model.ImplementationDelegateExpression, model.ImplementationExpression:
		items = append(items, lint.Infof(lint.CategoryProcess, subject,
			"%s implementation %q resolves at run time, capability check skipped", node.Type, impl.Ref))
	}

	if node.MultiInstance != nil && !node.AsyncBefore {
		items = append(items, lint.Errorf(lint.CategoryProcess, subject,
			"multi-instance %s needs the asynchronous-before flag", node.Type))
	} else if node.MultiInstance != nil {
		items = append(items, lint.Successf(lint.CategoryProcess, subject,
			"multi-instance %s is asynchronous-before", node.Type))
	}

	return items
}

// checkUserTask validates user tasks: they surface work to people, so a
// display name is required.
func (d *Dispatcher) checkUserTask(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if node.Name == "" {
		items = append(items, lint.Error(lint.CategoryProcess, subject,
			"user task needs a name"))
	} else {
		items = append(items, lint.Success(lint.CategoryProcess, subject,
			"user task has a name"))
	}
	return items
}

// checkReceiveTask validates receive tasks: the awaited message must be
// declared and resolvable.
func (d *Dispatcher) checkReceiveTask(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if node.Event == nil || node.Event.Type != model.EventMessage || node.Event.MessageName == "" {
		items = append(items, lint.Error(lint.CategoryProcess, subject,
			"receive task declares no message name"))
		return items
	}
	items = append(items, lint.Successf(lint.CategoryProcess, subject,
		"receive task awaits message %q", node.Event.MessageName))
	if d.refs != nil {
		items = append(items, d.refs.CheckMessageName(node.Event.MessageName, subject)...)
	}
	return items
}

// checkSubProcess validates sub processes: multi-instance sub processes need
// the asynchronous-before execution flag.
func (d *Dispatcher) checkSubProcess(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if node.MultiInstance != nil {
		if !node.AsyncBefore {
			items = append(items, lint.Error(lint.CategoryProcess, subject,
				"multi-instance sub process needs the asynchronous-before flag"))
		} else {
			items = append(items, lint.Success(lint.CategoryProcess, subject,
				"multi-instance sub process is asynchronous-before"))
		}
	}
	return items
}
