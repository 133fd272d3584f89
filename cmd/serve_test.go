package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArtifacts_MissingDir(t *testing.T) {
	scaler, model := loadArtifacts(filepath.Join(t.TempDir(), "nope"))
	assert.Nil(t, scaler)
	assert.Nil(t, model)
}

func TestLoadArtifacts_ScalerOnlyIsUnready(t *testing.T) {
	// A lone scaler without its model is not a usable artifact pair.
	dir := t.TempDir()
	blob := `{"features":["a"],"means":[0],"stddevs":[1]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaler.json"), []byte(blob), 0o644))

	scaler, model := loadArtifacts(dir)
	assert.Nil(t, scaler)
	assert.Nil(t, model)
}
