package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-dri/pkg/dri"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("STORAGE_TYPE", "memory")

	out := &bytes.Buffer{}
	RootCmd.SetOut(out)
	RootCmd.SetErr(out)
	RootCmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

func TestTypesCommand(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)

	var types []string
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	assert.Equal(t, []string{"collection", "series", "item"}, types)
}

func TestRecordGetMissing(t *testing.T) {
	_, err := run(t, "record", "get", "missing")
	assert.ErrorIs(t, err, dri.ErrRecordNotFound)
}

func TestCreateRejectsBadProperties(t *testing.T) {
	_, err := run(t, "record", "create", "item", "not-json")
	assert.Error(t, err)
}

func TestConvertUnknownFormat(t *testing.T) {
	_, err := run(t, "convert", "marc", "x")
	assert.Error(t, err)
}
