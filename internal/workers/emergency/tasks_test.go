package emergency

import (
	"testing"

	"emergency-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCoversTaskTypes(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../configs/activity-registry.json")
	require.NoError(t, err)
	require.NoError(t, reg.Validate(TaskTypes...))

	for _, tt := range TaskTypes {
		a, ok := reg.FindByTaskType(tt)
		require.True(t, ok, tt)
		assert.NotNil(t, a.InputSchema, tt)
	}
}
