package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalStem(t *testing.T) {
	stem, versioned := CanonicalStem("http://x.org/fhir/StructureDefinition/task-a|#{version}")
	assert.Equal(t, "http://x.org/fhir/StructureDefinition/task-a", stem)
	assert.True(t, versioned)
}

func TestCanonicalStemWithoutVersion(t *testing.T) {
	stem, versioned := CanonicalStem("http://x.org/fhir/StructureDefinition/task-a")
	assert.Equal(t, "http://x.org/fhir/StructureDefinition/task-a", stem)
	assert.False(t, versioned)
}

func TestCanonicalVersion(t *testing.T) {
	assert.Equal(t, "#{version}", CanonicalVersion("http://x.org/a|#{version}"))
	assert.Equal(t, "", CanonicalVersion("http://x.org/a"))
}

func TestCodingKey(t *testing.T) {
	c := Coding{System: "http://x.org/cs", Code: "message-name"}
	assert.Equal(t, "http://x.org/cs#message-name", c.Key())
}

func TestFlowNodeIsGateway(t *testing.T) {
	assert.True(t, (&FlowNode{Type: NodeExclusiveGateway}).IsGateway())
	assert.True(t, (&FlowNode{Type: NodeEventBasedGateway}).IsGateway())
	assert.False(t, (&FlowNode{Type: NodeServiceTask}).IsGateway())
}

func TestProcessGraphLookups(t *testing.T) {
	g := &ProcessGraph{
		Id: "p1",
		Nodes: []*FlowNode{
			{Id: "g1", Type: NodeExclusiveGateway},
			{Id: "f1", Type: NodeSequenceFlow, SourceRef: "g1", TargetRef: "t1"},
			{Id: "f2", Type: NodeSequenceFlow, SourceRef: "g1", TargetRef: "t2"},
			{Id: "t1", Type: NodeServiceTask},
		},
	}
	assert.Equal(t, NodeServiceTask, g.NodeById("t1").Type)
	assert.Nil(t, g.NodeById("missing"))
	assert.Len(t, g.FlowsFrom("g1"), 2)
	assert.Empty(t, g.FlowsFrom("t1"))
}

func TestPluginResourceByURL(t *testing.T) {
	doc := &ResourceDocument{Kind: KindActivityDefinition, URL: "http://x.org/ad/a"}
	p := &Plugin{Resources: map[ResourceKind][]ResourceFile{
		KindActivityDefinition: {{Document: doc, File: "a.json"}},
	}}
	assert.Equal(t, doc, p.ResourceByURL(KindActivityDefinition, "http://x.org/ad/a|#{version}"))
	assert.Nil(t, p.ResourceByURL(KindActivityDefinition, "http://x.org/ad/b"))
}
