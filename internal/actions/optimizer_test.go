package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAzureVMID(t *testing.T) {
	id := "/subscriptions/sub-1/resourceGroups/prod-rg/providers/Microsoft.Compute/virtualMachines/web-01"

	rg, name, err := parseAzureVMID(id)
	require.NoError(t, err)
	assert.Equal(t, "prod-rg", rg)
	assert.Equal(t, "web-01", name)
}

func TestParseAzureVMIDMalformed(t *testing.T) {
	for _, id := range []string{
		"",
		"vm-123",
		"/subscriptions/sub-1/resourceGroups/prod-rg",
	} {
		_, _, err := parseAzureVMID(id)
		assert.Error(t, err, "id %q", id)
	}
}
