package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_ValidCatalog(t *testing.T) {
	cat := writeTestCatalog(t)

	out, err := execute(t, "validate", "--catalog", cat)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog valid")
	assert.Contains(t, out, "3 field(s)")
}

func TestValidateCommand_BadMetricDefinition(t *testing.T) {
	doc := `
tables:
  - name: orders
    fields:
      - name: Subtotal
        type: number
    metrics:
      - name: Broken
        definition: sum([Missing])
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "validate", "--catalog", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Broken")
	assert.Contains(t, out, "Missing")
}

func TestValidateCommand_JSON(t *testing.T) {
	cat := writeTestCatalog(t)

	out, err := execute(t, "validate", "--catalog", cat, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.Fields)
	assert.Equal(t, 2, result.Metrics)
}

func TestValidateCommand_MissingSource(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_BothSourcesRejected(t *testing.T) {
	cat := writeTestCatalog(t)

	_, err := execute(t, "validate", "--catalog", cat, "--db", "x.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
