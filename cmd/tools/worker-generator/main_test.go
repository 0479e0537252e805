package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"emergency-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActivity() registry.Activity {
	return registry.Activity{
		ID:          "share-location",
		DisplayName: "Share Location",
		Description: "sends the caller's position to a contact.",
		TaskType:    "share-location",
		Timeout:     "5s",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"contactId"},
			"properties": map[string]interface{}{
				"contactId": map[string]interface{}{"type": "string"},
				"location":  map[string]interface{}{"type": []interface{}{"object", "null"}},
				"radius":    map[string]interface{}{"type": "number"},
			},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"delivered": map[string]interface{}{"type": "boolean"},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()

	dir, files, err := generate(testActivity(), out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "share-location"), dir)
	assert.Len(t, files, len(templates))

	models, err := os.ReadFile(filepath.Join(dir, "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "package sharelocation")
	assert.Contains(t, string(models), "ContactID string `json:\"contactId\"`")
	assert.Contains(t, string(models), "Location map[string]interface{} `json:\"location,omitempty\"`")
	assert.Contains(t, string(models), "Radius float64 `json:\"radius,omitempty\"`")
	assert.Contains(t, string(models), "Delivered bool `json:\"delivered,omitempty\"`")

	handler, err := os.ReadFile(filepath.Join(dir, "handler.go"))
	require.NoError(t, err)
	assert.Contains(t, string(handler), `TaskType = "share-location"`)
}

func TestGenerate_RefusesExisting(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "share-location"), 0o755))

	_, _, err := generate(testActivity(), out)
	assert.True(t, errors.Is(err, errWorkerExists))
}

func TestGoName(t *testing.T) {
	assert.Equal(t, "ContactID", goName("contactId"))
	assert.Equal(t, "ImageURL", goName("imageUrl"))
	assert.Equal(t, "SmsSent", goName("smsSent"))
	assert.Equal(t, "Text", goName("text"))
}
