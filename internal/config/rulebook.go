// Package config holds the domain rulebook: every fixed token, authority URI,
// vocabulary and type contract the rules reference. Defaults are compiled in;
// deployments may override single values via a YAML fragment.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// Contracts are the required base types per plugin API generation.
type Contracts struct {
	// Definition is the base contract a plugin's definition type must satisfy.
	Definition string `yaml:"definition"`
	// ServiceTask is the contract a service task implementation must satisfy.
	ServiceTask string `yaml:"service_task"`
	// ExecutionListener / TaskListener are the listener contracts.
	ExecutionListener string `yaml:"execution_listener"`
	TaskListener      string `yaml:"task_listener"`
}

// Rulebook is the full set of domain constants driving rule evaluation.
type Rulebook struct {
	// Placeholder tokens resources must carry verbatim; the packaging
	// pipeline substitutes them at release time.
	VersionPlaceholder      string `yaml:"version_placeholder"`
	DatePlaceholder         string `yaml:"date_placeholder"`
	OrganizationPlaceholder string `yaml:"organization_placeholder"`

	// Identifier and tag vocabularies.
	OrganizationIdentifierSystem string `yaml:"organization_identifier_system"`
	ReadAccessTagSystem          string `yaml:"read_access_tag_system"`
	MessageSystem                string `yaml:"message_system"`
	MessageNameCode              string `yaml:"message_name_code"`
	BusinessKeyCode              string `yaml:"business_key_code"`

	// ParentOrganizationRoleURL is the extension URL whose codings must use a
	// known organization role code.
	ParentOrganizationRoleURL string   `yaml:"parent_organization_role_url"`
	OrganizationRoles         []string `yaml:"organization_roles"`

	// ReadAccessAllCodes are the tag codes granting sufficient read access.
	ReadAccessAllCodes []string `yaml:"read_access_all_codes"`

	// ContractsV1/V2 are the capability contracts per API generation.
	ContractsV1 Contracts `yaml:"contracts_v1"`
	ContractsV2 Contracts `yaml:"contracts_v2"`

	// AgreementMinTokenLen is the minimum shared-token length for the
	// message-name / profile stem agreement heuristic.
	AgreementMinTokenLen int `yaml:"agreement_min_token_len"`
}

// Default returns the compiled-in rulebook.
func Default() *Rulebook {
	return &Rulebook{
		VersionPlaceholder:      "#{version}",
		DatePlaceholder:         "#{date}",
		OrganizationPlaceholder: "#{organization}",

		OrganizationIdentifierSystem: "http://dsf.dev/sid/organization-identifier",
		ReadAccessTagSystem:          "http://dsf.dev/fhir/CodeSystem/read-access-tag",
		MessageSystem:                "http://dsf.dev/fhir/CodeSystem/bpmn-message",
		MessageNameCode:              "message-name",
		BusinessKeyCode:              "business-key",

		ParentOrganizationRoleURL: "http://dsf.dev/fhir/StructureDefinition/extension-read-access-parent-organization-role",
		OrganizationRoles: []string{
			"UAC", "COS", "CRR", "DIC", "DMS", "DTS", "HRP", "TTP", "AMS",
		},

		ReadAccessAllCodes: []string{"ALL", "LOCAL"},

		ContractsV1: Contracts{
			Definition:        "org.highmed.dsf.bpe.ProcessPluginDefinition",
			ServiceTask:       "org.camunda.bpm.engine.delegate.JavaDelegate",
			ExecutionListener: "org.camunda.bpm.engine.delegate.ExecutionListener",
			TaskListener:      "org.camunda.bpm.engine.delegate.TaskListener",
		},
		ContractsV2: Contracts{
			Definition:        "dev.dsf.bpe.v2.ProcessPluginDefinition",
			ServiceTask:       "dev.dsf.bpe.v2.activity.ServiceTask",
			ExecutionListener: "dev.dsf.bpe.v2.activity.ExecutionListener",
			TaskListener:      "dev.dsf.bpe.v2.activity.UserTaskListener",
		},

		AgreementMinTokenLen: 4,
	}
}

// Load merges a YAML override fragment over the defaults. An empty fragment
// yields the defaults unchanged.
func Load(data []byte) (*Rulebook, error) {
	rb := Default()
	if len(data) == 0 {
		return rb, nil
	}
	if err := yaml.Unmarshal(data, rb); err != nil {
		return nil, lint.NewError(lint.ErrCodeConfig, "parse rulebook override").WithCause(err)
	}
	return rb, nil
}

// Contracts returns the contract set for the given API generation.
func (rb *Rulebook) Contracts(gen model.Generation) Contracts {
	if gen == model.GenerationV2 {
		return rb.ContractsV2
	}
	return rb.ContractsV1
}

// IsOrganizationRole reports whether code is a known organization role.
func (rb *Rulebook) IsOrganizationRole(code string) bool {
	for _, r := range rb.OrganizationRoles {
		if r == code {
			return true
		}
	}
	return false
}

// IsReadAccessAll reports whether code grants ALL/LOCAL read access.
func (rb *Rulebook) IsReadAccessAll(code string) bool {
	for _, c := range rb.ReadAccessAllCodes {
		if c == code {
			return true
		}
	}
	return false
}
