package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugdev/pluglint/pkg/model"
)

func TestDefaultRulebook(t *testing.T) {
	rb := Default()
	assert.Equal(t, "#{version}", rb.VersionPlaceholder)
	assert.Equal(t, "#{date}", rb.DatePlaceholder)
	assert.True(t, rb.IsOrganizationRole("DIC"))
	assert.False(t, rb.IsOrganizationRole("INVALID_ROLE"))
	assert.True(t, rb.IsReadAccessAll("ALL"))
	assert.True(t, rb.IsReadAccessAll("LOCAL"))
	assert.False(t, rb.IsReadAccessAll("ORGANIZATION"))
}

func TestContractsPerGeneration(t *testing.T) {
	rb := Default()
	assert.Equal(t, rb.ContractsV1, rb.Contracts(model.GenerationV1))
	assert.Equal(t, rb.ContractsV2, rb.Contracts(model.GenerationV2))
	assert.NotEqual(t, rb.ContractsV1.Definition, rb.ContractsV2.Definition)
}

func TestLoadEmptyKeepsDefaults(t *testing.T) {
	rb, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), rb)
}

func TestLoadOverridesSingleValues(t *testing.T) {
	rb, err := Load([]byte("version_placeholder: '#{v}'\norganization_roles: [DIC]\n"))
	require.NoError(t, err)
	assert.Equal(t, "#{v}", rb.VersionPlaceholder)
	assert.Equal(t, []string{"DIC"}, rb.OrganizationRoles)
	// untouched values stay at default
	assert.Equal(t, "#{date}", rb.DatePlaceholder)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load([]byte("version_placeholder: [unclosed"))
	require.Error(t, err)
}
