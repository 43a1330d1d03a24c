package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/mephisto/loader"
)

func TestStub_ReturnsRegisteredSource(t *testing.T) {
	stub := loader.NewStub(map[string]string{
		"./main.meph": "let a = 1;",
	})
	src, err := stub.Load(context.Background(), "./main.meph", "ignored-base")
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;", src)
}

func TestStub_NotFound(t *testing.T) {
	stub := loader.NewStub(nil)
	_, err := stub.Load(context.Background(), "missing.meph", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.meph")
	assert.Contains(t, err.Error(), "not found")
}

func TestNative_LoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	source := "output out = 0;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "osc.meph"), []byte(source), 0o644))

	native := loader.NewNative()
	got, err := native.Load(context.Background(), "osc.meph", dir)
	require.NoError(t, err)
	assert.Equal(t, source, got)
}

func TestNative_MissingFile(t *testing.T) {
	native := loader.NewNative()
	_, err := native.Load(context.Background(), "nope.meph", t.TempDir())
	assert.Error(t, err)
}
