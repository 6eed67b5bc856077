package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/scene/writer"
	"github.com/achilleasa/voxtrace/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoxelList(t *testing.T) {
	payload := `
# a small L shape
0 0 0
1, 0, 0   # trailing comment
0 1 0
`
	coords, err := parseVoxelList(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, []types.IVec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, coords)
}

func TestParseVoxelListErrors(t *testing.T) {
	type spec struct {
		payload string
		expErr  string
	}
	specs := []spec{
		{"0 0\n", "line 1: expected 3 coordinates; got 2"},
		{"0 0 0\n1 x 0\n", `line 2: invalid coordinate "x"`},
		{"0 0 0.5\n", `line 1: invalid coordinate "0.5"`},
	}

	for index, s := range specs {
		_, err := parseVoxelList(strings.NewReader(s.payload))
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestReadSceneFromVoxelList(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scene.voxels")
	require.NoError(t, os.WriteFile(file, []byte("0 0 0\n3 0 0\n0 0 3\n"), 0644))

	sc, err := ReadScene(file)
	require.NoError(t, err)
	require.NoError(t, sc.Validate())
	assert.Len(t, sc.Voxels, 3)
}

func TestZipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.txt")
	require.NoError(t, os.WriteFile(src, []byte("0 0 0\n5 5 5\n"), 0644))

	sc, err := ReadScene(src)
	require.NoError(t, err)

	zipFile := filepath.Join(dir, "scene.zip")
	require.NoError(t, writer.WriteScene(sc, zipFile))

	loaded, err := ReadScene(zipFile)
	require.NoError(t, err)
	assert.Equal(t, sc.Nodes, loaded.Nodes)
	assert.Equal(t, sc.Voxels, loaded.Voxels)
	assert.Equal(t, scene.NoNode, loaded.Nodes[0].Parent)
}

func TestUnsupportedFormat(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scene.obj")
	require.NoError(t, os.WriteFile(file, []byte("v 0 0 0\n"), 0644))

	_, err := ReadScene(file)
	assert.EqualError(t, err, "readScene: unsupported file format")

	_, err = ReadVoxelList(file)
	assert.EqualError(t, err, "readVoxelList: unsupported file format")
}
