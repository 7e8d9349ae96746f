package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "reconcile", cmd.Use)

	formatFlag := cmd.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "table", formatFlag.DefValue)
	require.NotNil(t, cmd.Flags().Lookup("rules"))
	require.NotNil(t, cmd.Flags().Lookup("ml"))
}

func TestReconcile_JSON(t *testing.T) {
	out, err := run(t, "--rules", "testdata/rules.json", "--ml", "testdata/ml.json", "--format", "json")
	require.NoError(t, err)

	goldie.New(t).Assert(t, "comparison", []byte(out))
}

func TestReconcile_CSV(t *testing.T) {
	out, err := run(t, "--rules", "testdata/rules.json", "--ml", "testdata/ml.json", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "productId,productName,ruleRecommendation,mlRecommendation\n2,Bread,HOLD,AVOID\n", out)
}

func TestReconcile_Table(t *testing.T) {
	out, err := run(t, "--rules", "testdata/rules.json", "--ml", "testdata/ml.json")
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "TRANSFER_OR_PROMOTE")
	assert.Contains(t, out, "matched: 2  agreements: 1  conflicts: 1")
	assert.Contains(t, out, "Bread")
}

func TestReconcile_NoConflicts(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"items":[]}`), 0o600))

	out, err := run(t, "--rules", empty, "--ml", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "matched: 0  agreements: 0  conflicts: 0")
	assert.NotContains(t, out, "PRODUCT ID")
}

func TestReconcile_Errors(t *testing.T) {
	_, err := run(t, "--rules", "testdata/rules.json", "--ml", "testdata/ml.json", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, err = run(t, "--rules", "testdata/missing.json", "--ml", "testdata/ml.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules")

	_, err = run(t, "--ml", "testdata/ml.json")
	require.Error(t, err)
}
