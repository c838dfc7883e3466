package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janm31415/fcpw/pkg/accel"
)

func TestLoad_Defaults(t *testing.T) {
	// no config file anywhere: defaults apply
	t.Chdir(t.TempDir())

	opts, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, accel.DefaultBuildOptions(), opts)
}

func TestLoadFromReader_YAML(t *testing.T) {
	content := []byte(`
heuristic: overlap_surface_area
split_alpha: 0.001
leaf_size: 8
n_buckets: 16
n_bins: 32
pack_leaves: true
`)

	opts, err := LoadFromReader("yaml", content)
	require.NoError(t, err)

	assert.Equal(t, accel.OverlapSurfaceArea, opts.Heuristic)
	assert.Equal(t, 0.001, opts.SplitAlpha)
	assert.Equal(t, 8, opts.LeafSize)
	assert.Equal(t, 16, opts.NBuckets)
	assert.Equal(t, 32, opts.NBins)
	assert.True(t, opts.PackLeaves)
}

func TestLoadFromReader_PartialOverridesKeepDefaults(t *testing.T) {
	opts, err := LoadFromReader("yaml", []byte("leaf_size: 2\n"))
	require.NoError(t, err)

	defaults := accel.DefaultBuildOptions()
	assert.Equal(t, 2, opts.LeafSize)
	assert.Equal(t, defaults.Heuristic, opts.Heuristic)
	assert.Equal(t, defaults.SplitAlpha, opts.SplitAlpha)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fcpw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heuristic: volume\n"), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, accel.Volume, opts.Heuristic)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FCPW_LEAF_SIZE", "12")

	opts, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, opts.LeafSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("heuristic: nonsense\n"))
	assert.ErrorIs(t, err, accel.ErrInvalidOptions)

	_, err = LoadFromReader("yaml", []byte("leaf_size: 0\n"))
	assert.ErrorIs(t, err, accel.ErrInvalidOptions)

	_, err = LoadFromReader("yaml", []byte("split_alpha: 1.5\n"))
	assert.ErrorIs(t, err, accel.ErrInvalidOptions)
}
