package bpmn

import (
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

func (d *Dispatcher) checkStartEvent(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item

	if node.Event != nil && node.Event.Type == model.EventMessage {
		if node.Event.MessageName == "" {
			items = append(items, lint.Error(lint.CategoryEvent, subject,
				"message start event has no message name"))
		} else {
			items = append(items, lint.Successf(lint.CategoryEvent, subject,
				"message start event declares message name %q", node.Event.MessageName))
			if d.refs != nil {
				items = append(items, d.refs.CheckMessageName(node.Event.MessageName, subject)...)
			}
		}
		return items
	}

	// Timer, signal and conditional start events carry their own event
	// definition rules.
	items = append(items, d.checkEventDefinition(node, subject)...)

	if !node.InSubProcess() {
		if node.Name == "" {
			items = append(items, lint.Error(lint.CategoryEvent, subject,
				"start event needs a name"))
		} else {
			items = append(items, lint.Success(lint.CategoryEvent, subject,
				"start event has a name"))
		}
	}
	return items
}

func (d *Dispatcher) checkEndEvent(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item

	if node.InSubProcess() {
		if !node.AsyncAfter {
			items = append(items, lint.Error(lint.CategoryEvent, subject,
				"end event inside a sub process needs the asynchronous-after flag"))
		} else {
			items = append(items, lint.Success(lint.CategoryEvent, subject,
				"end event inside a sub process is asynchronous-after"))
		}
	}

	items = append(items, d.checkEventDefinition(node, subject)...)
	return items
}

func (d *Dispatcher) checkThrowEvent(node *model.FlowNode, subject model.FileRef) []lint.Item {
	var items []lint.Item
	if node.Event != nil && node.Event.Type == model.EventMessage {
		if node.Event.MessageName == "" {
			items = append(items, lint.Error(lint.CategoryEvent, subject,
				"message throw event has no message name"))
		} else {
			items = append(items, lint.Successf(lint.CategoryEvent, subject,
				"message throw event declares message name %q", node.Event.MessageName))
			if d.refs != nil {
				items = append(items, d.refs.CheckMessageName(node.Event.MessageName, subject)...)
			}
		}
		return items
	}
	return d.checkEventDefinition(node, subject)
}

func (d *Dispatcher) checkCatchEvent(node *model.FlowNode, subject model.FileRef) []lint.Item {
	return d.checkEventDefinition(node, subject)
}

func (d *Dispatcher) checkBoundaryEvent(node *model.FlowNode, subject model.FileRef) []lint.Item {
	return d.checkEventDefinition(node, subject)
}

// checkEventDefinition dispatches on the event definition variant. A node
// without an event definition has nothing to check here.
func (d *Dispatcher) checkEventDefinition(node *model.FlowNode, subject model.FileRef) []lint.Item {
	ev := node.Event
	if ev == nil {
		return nil
	}
	switch ev.Type {
	case model.EventTimer:
		return d.checkTimer(ev, subject)
	case model.EventConditional:
		return d.checkConditional(ev, subject)
	case model.EventSignal:
		if ev.SignalName == "" {
			return []lint.Item{lint.Error(lint.CategoryEvent, subject,
				"signal event has no signal name")}
		}
		return []lint.Item{lint.Successf(lint.CategoryEvent, subject,
			"signal event declares signal name %q", ev.SignalName)}
	case model.EventError:
		if ev.ErrorCode == "" && ev.ErrorName == "" {
			return []lint.Item{lint.Warn(lint.CategoryEvent, subject,
				"error event declares neither an error code nor an error name")}
		}
		return []lint.Item{lint.Success(lint.CategoryEvent, subject,
			"error event declares an error code or name")}
	case model.EventMessage:
		if ev.MessageName == "" {
			return []lint.Item{lint.Error(lint.CategoryEvent, subject,
				"message event has no message name")}
		}
		var items []lint.Item
		items = append(items, lint.Successf(lint.CategoryEvent, subject,
			"message event declares message name %q", ev.MessageName))
		if d.refs != nil {
			items = append(items, d.refs.CheckMessageName(ev.MessageName, subject)...)
		}
		return items
	}
	return nil
}

// checkTimer requires exactly one of {fixed date, cycle, duration}. A fixed
// date signals a non-parameterized schedule (INFO); cycle and duration values
// are expected to carry the version placeholder so deployments can substitute
// them (WARN otherwise). Cron-form cycles are syntax checked.
func (d *Dispatcher) checkTimer(ev *model.EventDefinition, subject model.FileRef) []lint.Item {
	var items []lint.Item

	set := 0
	for _, v := range []string{ev.TimerDate, ev.TimerCycle, ev.TimerDuration} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return append(items, lint.Errorf(lint.CategoryEvent, subject,
			"timer event must set exactly one of date, cycle or duration, got %d", set))
	}
	items = append(items, lint.Success(lint.CategoryEvent, subject,
		"timer event sets exactly one timer expression"))

	switch {
	case ev.TimerDate != "":
		items = append(items, lint.Info(lint.CategoryEvent, subject,
			"timer event uses a fixed date, schedule is not parameterized"))
	case ev.TimerCycle != "":
		items = append(items, d.checkTimerValue(ev.TimerCycle, "cycle", subject)...)
	case ev.TimerDuration != "":
		items = append(items, d.checkTimerValue(ev.TimerDuration, "duration", subject)...)
	}
	return items
}

func (d *Dispatcher) checkTimerValue(value, what string, subject model.FileRef) []lint.Item {
	var items []lint.Item

	if !strings.Contains(value, d.rules.VersionPlaceholder) {
		items = append(items, lint.Warnf(lint.CategoryEvent, subject,
			"timer %s %q carries no version placeholder", what, value))
	} else {
		items = append(items, lint.Successf(lint.CategoryEvent, subject,
			"timer %s carries the version placeholder", what))
		return items
	}

	// Cron-form cycles (neither ISO 8601 nor placeholder-parameterized) must
	// at least parse.
	if what == "cycle" && !strings.HasPrefix(value, "R") && !strings.HasPrefix(value, "P") {
		if _, err := cron.ParseStandard(value); err != nil {
			items = append(items, lint.Errorf(lint.CategoryEvent, subject,
				"timer cycle %q is neither ISO 8601 nor a valid cron expression: %v", value, err))
		} else {
			items = append(items, lint.Successf(lint.CategoryEvent, subject,
				"timer cycle %q is a valid cron expression", value))
		}
	}
	return items
}

// checkConditional requires a variable name, a variable-events attribute, a
// condition type of "expression" and a non-empty condition body. The body's
// inner expression is additionally syntax checked.
func (d *Dispatcher) checkConditional(ev *model.EventDefinition, subject model.FileRef) []lint.Item {
	var items []lint.Item

	if ev.VariableName == "" {
		items = append(items, lint.Error(lint.CategoryEvent, subject,
			"conditional event has no variable name"))
	} else {
		items = append(items, lint.Success(lint.CategoryEvent, subject,
			"conditional event declares a variable name"))
	}

	if ev.VariableEvents == "" {
		items = append(items, lint.Error(lint.CategoryEvent, subject,
			"conditional event has no variable-events attribute"))
	} else {
		items = append(items, lint.Success(lint.CategoryEvent, subject,
			"conditional event declares variable events"))
	}

	if ev.ConditionType != "expression" {
		items = append(items, lint.Errorf(lint.CategoryEvent, subject,
			"conditional event condition type must be \"expression\", got %q", ev.ConditionType))
	} else {
		items = append(items, lint.Success(lint.CategoryEvent, subject,
			"conditional event condition type is \"expression\""))
	}

	if ev.ConditionBody == "" {
		items = append(items, lint.Error(lint.CategoryEvent, subject,
			"conditional event has an empty condition body"))
	} else {
		items = append(items, lint.Success(lint.CategoryEvent, subject,
			"conditional event has a condition body"))
		items = append(items, checkExpressionSyntax(ev.ConditionBody, lint.CategoryEvent, subject)...)
	}

	return items
}
