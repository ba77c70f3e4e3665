package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	base := []string{"--config", "../../config/engine.yaml", "--elements", "../../config/elements.yaml", "--log-level", "error"}
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "5 elements")
	assert.Contains(t, out, "burning")
	assert.Contains(t, out, "OK")
}

func TestValidate_BadCatalog(t *testing.T) {
	_, err := execute(t, "validate", "--elements", "testdata/absent.yaml")
	assert.ErrorContains(t, err, "loading elements")
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "water", "fire", "--att-mastery", "600", "--def-mastery", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "overcoming")

	_, err = execute(t, "classify", "water", "void")
	assert.Error(t, err)
}

func TestTrigger(t *testing.T) {
	out, err := execute(t, "trigger", "fire", "metal", "--roll", "0", "--repeat", "6", "--tick", "0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Probability")
	assert.Contains(t, out, "active")
}

func TestRoundtrip(t *testing.T) {
	out, err := execute(t, "roundtrip")
	require.NoError(t, err)
	assert.Contains(t, out, "supreme")
	assert.Contains(t, out, "OK")

	out, err = execute(t, "roundtrip", "12345")
	require.NoError(t, err)
	assert.Contains(t, out, "apprentice")
}

func TestSimulate(t *testing.T) {
	out, err := execute(t, "simulate", "--rounds", "50", "--seed", "7", "--effects")
	require.NoError(t, err)
	assert.Contains(t, out, "50 rounds")
	assert.Contains(t, out, "element_mastery")
	assert.Contains(t, out, "Cache:")
}
