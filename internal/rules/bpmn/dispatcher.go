// Package bpmn traverses process graphs and dispatches each flow node to its
// variant-specific rule procedure. Dispatch switches exhaustively on the node
// type tag: adding a node variant is a compile-visible change here, not a new
// runtime type test.
package bpmn

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/plugdev/pluglint/internal/capability"
	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/internal/crossref"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// Dispatcher validates the process graphs of one plugin. It carries the
// plugin's API generation and project root so capability checks use the
// right contracts and artifact locations.
type Dispatcher struct {
	rules    *config.Rulebook
	refs     *crossref.Checker
	verifier *capability.Verifier
	logger   *slog.Logger

	generation  model.Generation
	projectRoot string
}

// NewDispatcher creates a dispatcher for one plugin's graphs. refs and
// verifier may be nil; the dependent sub-checks degrade to being omitted.
func NewDispatcher(rules *config.Rulebook, refs *crossref.Checker, verifier *capability.Verifier,
	generation model.Generation, projectRoot string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		rules:       rules,
		refs:        refs,
		verifier:    verifier,
		logger:      logger,
		generation:  generation,
		projectRoot: projectRoot,
	}
}

// Validate runs every node of the graph through its rule procedure and
// returns the collected items. Item order is not significant. A panic inside
// a single node's procedure is isolated into a diagnostic item; sibling nodes
// are still validated.
func (d *Dispatcher) Validate(graph *model.ProcessGraph, file string) []lint.Item {
	var items []lint.Item
	seen := make(map[string]bool, len(graph.Nodes))
	for _, node := range graph.Nodes {
		if node.Id != "" {
			if seen[node.Id] {
				items = append(items, lint.Errorf(lint.CategoryProcess,
					model.FileRef{File: file, Element: node.Id},
					"duplicate flow node id %s", node.Id))
			}
			seen[node.Id] = true
		}
		items = append(items, d.validateNode(graph, node, file)...)
	}
	return items
}

func (d *Dispatcher) validateNode(graph *model.ProcessGraph, node *model.FlowNode, file string) (items []lint.Item) {
	subject := model.FileRef{File: file, Element: node.Id}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("node rule procedure panicked",
				slog.String("node", node.Id), slog.Any("panic", r))
			items = append(items, lint.Errorf(lint.CategoryProcess, subject,
				"rule evaluation failed for node %s: %v", node.Id, r))
		}
	}()

	if node.Id == "" {
		items = append(items, lint.Error(lint.CategoryProcess, subject,
			"flow node has no id"))
	}

	switch node.Type {
	case model.NodeStartEvent:
		items = append(items, d.checkStartEvent(node, subject)...)
	case model.NodeEndEvent:
		items = append(items, d.checkEndEvent(node, subject)...)
	case model.NodeIntermediateThrowEvent:
		items = append(items, d.checkThrowEvent(node, subject)...)
	case model.NodeIntermediateCatchEvent:
		items = append(items, d.checkCatchEvent(node, subject)...)
	case model.NodeBoundaryEvent:
		items = append(items, d.checkBoundaryEvent(node, subject)...)
	case model.NodeExclusiveGateway, model.NodeInclusiveGateway, model.NodeEventBasedGateway:
		items = append(items, d.checkGateway(graph, node, subject)...)
	case model.NodeSequenceFlow:
		items = append(items, d.checkSequenceFlow(graph, node, subject)...)
	case model.NodeSubProcess:
		items = append(items, d.checkSubProcess(node, subject)...)
	case model.NodeServiceTask, model.NodeSendTask:
		items = append(items, d.checkImplementedTask(node, subject)...)
	case model.NodeUserTask:
		items = append(items, d.checkUserTask(node, subject)...)
	case model.NodeReceiveTask:
		items = append(items, d.checkReceiveTask(node, subject)...)
	default:
		items = append(items, lint.Warnf(lint.CategoryProcess, subject,
			"unknown flow node type %q", node.Type))
	}

	// Listener and field injection checks apply to every variant.
	items = append(items, d.checkListeners(node, subject)...)
	if d.refs != nil && len(node.FieldInjections) > 0 {
		items = append(items, d.refs.CheckInjections(node, subject)...)
	}

	return items
}

// checkListeners verifies every declared listener class against the
// generation's listener contract. "Not found" and "found but non-conforming"
// stay distinct findings.
func (d *Dispatcher) checkListeners(node *model.FlowNode, subject model.FileRef) []lint.Item {
	if d.verifier == nil || len(node.Listeners) == 0 {
		return nil
	}
	contracts := d.rules.Contracts(d.generation)

	var items []lint.Item
	for _, l := range node.Listeners {
		contract := contracts.ExecutionListener
		if l.Scope == model.ListenerTask {
			contract = contracts.TaskListener
		}
		items = append(items, d.checkCapability(l.Class, contract,
			fmt.Sprintf("%s listener", l.Scope), subject))
	}
	return items
}

// checkCapability turns one capability query into a lint item.
func (d *Dispatcher) checkCapability(typeName, contract, what string, subject model.FileRef) lint.Item {
	q := d.verifier.Verify(typeName, contract, d.projectRoot)
	switch {
	case !q.Exists:
		return lint.Errorf(lint.CategoryCapability, subject,
			"%s class %s not found in project artifacts", what, typeName)
	case !q.ImplementsRequired:
		return lint.Errorf(lint.CategoryCapability, subject,
			"%s class %s does not implement %s", what, typeName, contract)
	default:
		return lint.Successf(lint.CategoryCapability, subject,
			"%s class %s implements %s", what, typeName, contract)
	}
}
