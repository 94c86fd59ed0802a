package model

// NodeType enumerates the flow node variants of a process graph.
// Dispatch over nodes switches exhaustively on this tag instead of
// type-testing parsed elements.
type NodeType string

const (
	NodeServiceTask            NodeType = "serviceTask"
	NodeUserTask               NodeType = "userTask"
	NodeSendTask               NodeType = "sendTask"
	NodeReceiveTask            NodeType = "receiveTask"
	NodeStartEvent             NodeType = "startEvent"
	NodeEndEvent               NodeType = "endEvent"
	NodeIntermediateThrowEvent NodeType = "intermediateThrowEvent"
	NodeIntermediateCatchEvent NodeType = "intermediateCatchEvent"
	NodeBoundaryEvent          NodeType = "boundaryEvent"
	NodeExclusiveGateway       NodeType = "exclusiveGateway"
	NodeInclusiveGateway       NodeType = "inclusiveGateway"
	NodeEventBasedGateway      NodeType = "eventBasedGateway"
	NodeSequenceFlow           NodeType = "sequenceFlow"
	NodeSubProcess             NodeType = "subProcess"
)

// EventType enumerates the event definition variants a flow node may carry.
type EventType string

const (
	EventMessage     EventType = "message"
	EventSignal      EventType = "signal"
	EventTimer       EventType = "timer"
	EventConditional EventType = "conditional"
	EventError       EventType = "error"
)

// EventDefinition is the tagged union of event definition payloads.
// Only the fields matching Type are meaningful. A node carries at most one
// event definition; parsers that encounter several keep the first.
type EventDefinition struct {
	Type EventType

	// EventMessage
	MessageName string

	// EventSignal
	SignalName string

	// EventTimer: exactly one of the three expressions should be set.
	TimerDate     string
	TimerCycle    string
	TimerDuration string

	// EventConditional
	VariableName   string
	VariableEvents string
	ConditionType  string
	ConditionBody  string

	// EventError
	ErrorCode string
	ErrorName string
}

// ValueKind tags a field injection value as a literal string or an
// expression. Expressions cannot be resolved at analysis time.
type ValueKind string

const (
	ValueLiteral    ValueKind = "literal"
	ValueExpression ValueKind = "expression"
)

// FieldInjection is a name/value pair injected into a task implementation.
type FieldInjection struct {
	Name  string
	Kind  ValueKind
	Value string
}

// ListenerScope distinguishes execution listeners from task listeners.
type ListenerScope string

const (
	ListenerExecution ListenerScope = "execution"
	ListenerTask      ListenerScope = "task"
)

// Listener is a declared execution or task listener with its implementation
// class name.
type Listener struct {
	Scope ListenerScope
	Class string
}

// ImplementationKind tags how a task names its implementation.
type ImplementationKind string

const (
	ImplementationClass              ImplementationKind = "class"
	ImplementationDelegateExpression ImplementationKind = "delegateExpression"
	ImplementationExpression         ImplementationKind = "expression"
)

// Implementation is the declared implementation of a service/send task.
type Implementation struct {
	Kind ImplementationKind
	Ref  string
}

// MultiInstance marks a node as multi-instance (sequential or parallel).
type MultiInstance struct {
	Sequential bool
}

// FlowNode is a single node of a process graph. The Type tag selects which
// variant fields are meaningful; common fields (Id, Name, Parent, injections,
// listeners, event definition) apply to every variant.
type FlowNode struct {
	Id   string
	Name string
	Type NodeType

	// Parent is the containing sub-process, nil at process level.
	Parent *FlowNode

	FieldInjections []FieldInjection
	Listeners       []Listener
	Event           *EventDefinition

	// Task variants.
	Implementation *Implementation

	// NodeSequenceFlow.
	SourceRef           string
	TargetRef           string
	ConditionExpression string

	// Gateway variants: ids of outgoing sequence flows, optional default flow.
	Outgoing    []string
	DefaultFlow string

	// NodeSubProcess and multi-instance activities.
	MultiInstance *MultiInstance
	AsyncBefore   bool
	AsyncAfter    bool
}

// IsGateway reports whether the node is one of the gateway variants.
func (n *FlowNode) IsGateway() bool {
	switch n.Type {
	case NodeExclusiveGateway, NodeInclusiveGateway, NodeEventBasedGateway:
		return true
	}
	return false
}

// InSubProcess reports whether the node is nested inside a sub-process.
func (n *FlowNode) InSubProcess() bool {
	return n.Parent != nil
}

// ProcessGraph is the parsed node model of one process definition.
type ProcessGraph struct {
	Id    string
	Name  string
	Nodes []*FlowNode
}

// NodeById returns the node with the given id, or nil if no such node exists.
func (g *ProcessGraph) NodeById(id string) *FlowNode {
	for _, n := range g.Nodes {
		if n.Id == id {
			return n
		}
	}
	return nil
}

// FlowsFrom returns the sequence flows leaving the given node.
func (g *ProcessGraph) FlowsFrom(nodeId string) []*FlowNode {
	var flows []*FlowNode
	for _, n := range g.Nodes {
		if n.Type == NodeSequenceFlow && n.SourceRef == nodeId {
			flows = append(flows, n)
		}
	}
	return flows
}
