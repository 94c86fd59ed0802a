package analysis

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugdev/pluglint/internal/capability"
	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

const definitionType = "org.acme.order.OrderPluginDefinition"

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(Options{Workers: 2})
	require.NoError(t, err)

	contract := config.Default().ContractsV2.Definition
	r.Verifier().Register(capability.TypeInfo{Name: definitionType, Interfaces: []string{contract}})
	return r
}

func activityDoc() *model.ResourceDocument {
	rb := config.Default()
	return &model.ResourceDocument{
		Kind:    model.KindActivityDefinition,
		URL:     "http://x.org/bpe/Process/orderTransfer",
		Status:  "active",
		Version: rb.VersionPlaceholder,
		Date:    rb.DatePlaceholder,
		ReadAccessTags: []model.ReadAccessTag{
			{Coding: model.Coding{System: rb.ReadAccessTagSystem, Code: "ALL"}},
		},
		ActivityDefinition: &model.ActivityDefinitionFields{MessageNames: []string{"startOrderTransfer"}},
	}
}

func taskDoc() *model.ResourceDocument {
	rb := config.Default()
	return &model.ResourceDocument{
		Kind:    model.KindTask,
		URL:     "http://x.org/fhir/Task/task-order",
		Status:  "draft",
		Version: rb.VersionPlaceholder,
		Date:    rb.DatePlaceholder,
		ReadAccessTags: []model.ReadAccessTag{
			{Coding: model.Coding{System: rb.ReadAccessTagSystem, Code: "ALL"}},
		},
		Task: &model.TaskFields{
			Intent: "order",
			Requester: &model.Identifier{
				System: rb.OrganizationIdentifierSystem,
				Value:  rb.OrganizationPlaceholder,
			},
			Recipient: &model.Identifier{
				System: rb.OrganizationIdentifierSystem,
				Value:  rb.OrganizationPlaceholder,
			},
			InstantiatesCanonical: "http://x.org/bpe/Process/orderTransfer|#{version}",
			Inputs: []model.TaskInput{{
				Type:  model.Coding{System: rb.MessageSystem, Code: rb.MessageNameCode},
				Value: "startOrderTransfer",
			}},
		},
	}
}

func orderGraph() *model.ProcessGraph {
	return &model.ProcessGraph{
		Id: "orderTransfer",
		Nodes: []*model.FlowNode{
			{
				Id:    "start",
				Type:  model.NodeStartEvent,
				Event: &model.EventDefinition{Type: model.EventMessage, MessageName: "startOrderTransfer"},
			},
			{Id: "end", Type: model.NodeEndEvent},
		},
	}
}

func orderPlugin() *model.Plugin {
	return &model.Plugin{
		Name:           "order",
		Generation:     model.GenerationV2,
		DefinitionType: definitionType,
		Processes: []model.ProcessFile{
			{Graph: orderGraph(), File: "bpe/order-transfer.bpmn"},
		},
		Resources: map[model.ResourceKind][]model.ResourceFile{
			model.KindTask: {
				{Document: taskDoc(), File: "fhir/Task/task-order.json"},
			},
			model.KindActivityDefinition: {
				{Document: activityDoc(), File: "fhir/ActivityDefinition/order.json"},
			},
		},
		ProcessResources: map[string][]string{
			"orderTransfer": {
				"http://x.org/fhir/Task/task-order|#{version}",
				"http://x.org/bpe/Process/orderTransfer|#{version}",
			},
		},
	}
}

func itemsWith(items []lint.Item, sev lint.Severity, substr string) []lint.Item {
	var out []lint.Item
	for _, it := range items {
		if it.Severity == sev && strings.Contains(it.Message, substr) {
			out = append(out, it)
		}
	}
	return out
}

// --- registration ---

func TestUnregisteredPluginIsFatal(t *testing.T) {
	r := newTestRunner(t)
	p := orderPlugin()
	p.DefinitionType = ""

	result, err := r.AnalyzePlugin(context.Background(), p)
	require.Error(t, err)
	assert.True(t, lint.IsMissingRegistration(err))
	assert.Nil(t, result)
}

func TestDefinitionTypeVerified(t *testing.T) {
	r := newTestRunner(t)
	result, err := r.AnalyzePlugin(context.Background(), orderPlugin())
	require.NoError(t, err)
	assert.Len(t, itemsWith(result.Items(), lint.SeveritySuccess,
		"definition type "+definitionType+" implements"), 1)
}

func TestUnknownDefinitionTypeIsNotFatal(t *testing.T) {
	r := newTestRunner(t)
	p := orderPlugin()
	p.DefinitionType = "org.acme.Missing"

	result, err := r.AnalyzePlugin(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, itemsWith(result.Items(), lint.SeverityError,
		"definition type org.acme.Missing not found"), 1)
}

// --- clean plugin ---

func TestCleanPluginHasNoErrors(t *testing.T) {
	r := newTestRunner(t)
	result, err := r.AnalyzePlugin(context.Background(), orderPlugin())
	require.NoError(t, err)

	for _, it := range result.Items() {
		assert.NotEqual(t, lint.SeverityError, it.Severity, it.String())
	}
	assert.Len(t, itemsWith(result.Items(), lint.SeveritySuccess,
		"is declared by an ActivityDefinition"), 1)
}

// --- document isolation ---

func TestMalformedDocumentIsolated(t *testing.T) {
	r := newTestRunner(t)
	p := orderPlugin()
	broken := &model.ResourceDocument{
		Kind:   model.KindTask,
		URL:    "http://x.org/fhir/Task/task-broken",
		Source: []byte(`{"resourceType":`),
	}
	p.Resources[model.KindTask] = append(p.Resources[model.KindTask],
		model.ResourceFile{Document: broken, File: "fhir/Task/task-broken.json"})

	result, err := r.AnalyzePlugin(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, itemsWith(result.Items(), lint.SeverityError, "not parseable JSON"), 1)
	// The sibling document is still fully evaluated.
	assert.Len(t, itemsWith(result.Items(), lint.SeveritySuccess, "Task status is draft"), 1)
}

func TestStructuralFailureSkipsKindRules(t *testing.T) {
	r := newTestRunner(t)
	p := orderPlugin()
	doc := taskDoc()
	doc.Source = []byte(`{"resourceType": "Bundle"}`)
	p.Resources[model.KindTask] = []model.ResourceFile{
		{Document: doc, File: "fhir/Task/task-order.json"},
	}

	result, err := r.AnalyzePlugin(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, itemsWith(result.Items(), lint.SeverityError, "fails structural validation"), 1)
	assert.Empty(t, itemsWith(result.Items(), lint.SeveritySuccess, "Task status is draft"))
}

func TestUnparsedDocumentReported(t *testing.T) {
	r := newTestRunner(t)
	p := orderPlugin()
	p.Resources[model.KindTask] = append(p.Resources[model.KindTask],
		model.ResourceFile{File: "fhir/Task/garbage.json"})

	result, err := r.AnalyzePlugin(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, itemsWith(result.Items(), lint.SeverityError, "could not be parsed"), 1)
}

// --- cross-plugin resolution ---

func TestMessageResolvesAcrossPlugins(t *testing.T) {
	r := newTestRunner(t)

	definitions := &model.Plugin{
		Name:           "definitions",
		Generation:     model.GenerationV2,
		DefinitionType: definitionType,
		Resources: map[model.ResourceKind][]model.ResourceFile{
			model.KindActivityDefinition: {
				{Document: activityDoc(), File: "fhir/ActivityDefinition/order.json"},
			},
		},
	}
	consumer := &model.Plugin{
		Name:           "consumer",
		Generation:     model.GenerationV2,
		DefinitionType: definitionType,
		Processes: []model.ProcessFile{
			{Graph: orderGraph(), File: "bpe/order-transfer.bpmn"},
		},
	}

	_, err := r.AnalyzePlugin(context.Background(), definitions)
	require.NoError(t, err)
	result, err := r.AnalyzePlugin(context.Background(), consumer)
	require.NoError(t, err)

	assert.Len(t, itemsWith(result.Items(), lint.SeveritySuccess,
		`message name "startOrderTransfer" is declared by an ActivityDefinition`), 1)
}

// --- leftover barrier ---

func TestFinishReportsLeftovers(t *testing.T) {
	r := newTestRunner(t)
	p := orderPlugin()
	p.Processes = append(p.Processes, model.ProcessFile{
		Graph: &model.ProcessGraph{Id: "orphanProcess"}, File: "bpe/orphan.bpmn",
	})
	p.Resources[model.KindTask] = append(p.Resources[model.KindTask],
		model.ResourceFile{
			Document: &model.ResourceDocument{Kind: model.KindTask, URL: "http://x.org/fhir/Task/task-unused"},
			File:     "fhir/Task/task-unused.json",
		})

	_, err := r.AnalyzePlugin(context.Background(), p)
	require.NoError(t, err)

	report, items := r.Finish()
	assert.Equal(t, []string{"orphanProcess"}, report.Processes)
	assert.Equal(t, []string{"http://x.org/fhir/Task/task-unused"}, report.Resources[model.KindTask])
	assert.Len(t, itemsWith(items, lint.SeverityWarn, "orphanProcess"), 1)
	assert.Len(t, itemsWith(items, lint.SeverityWarn, "task-unused"), 1)
}

func TestFinishWithoutLeftovers(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.AnalyzePlugin(context.Background(), orderPlugin())
	require.NoError(t, err)

	report, items := r.Finish()
	assert.Empty(t, report.Processes)
	assert.Empty(t, report.Resources)
	assert.Empty(t, items)
}

func TestAnalyzePluginLogsCorrelationIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r, err := NewRunner(Options{Logger: logger, Workers: 2})
	require.NoError(t, err)
	contract := config.Default().ContractsV2.Definition
	r.Verifier().Register(capability.TypeInfo{Name: definitionType, Interfaces: []string{contract}})

	_, err = r.AnalyzePlugin(context.Background(), orderPlugin())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+r.RunID()+`"`)
	assert.Contains(t, out, `"plugin":"order"`)
}

func TestRunIDsAreUnique(t *testing.T) {
	a := newTestRunner(t)
	b := newTestRunner(t)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}
