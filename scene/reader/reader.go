package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/voxtrace/asset"
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/scene/compiler"
	"github.com/achilleasa/voxtrace/types"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a file or URL. Voxel lists are compiled on the fly using
// the default leaf size; zip archives are loaded as-is.
func ReadScene(filename string) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	if isVoxelList(filename) {
		reader = newVoxelListReader(compiler.DefaultMaxLeafVoxels)
	} else if strings.HasSuffix(filename, ".zip") {
		reader = newZipSceneReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}

// Read the raw voxel coordinates from a voxel list file or URL.
func ReadVoxelList(filename string) ([]types.IVec3, error) {
	if !isVoxelList(filename) {
		return nil, fmt.Errorf("readVoxelList: unsupported file format")
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return parseVoxelList(res)
}

func isVoxelList(filename string) bool {
	return strings.HasSuffix(filename, ".txt") || strings.HasSuffix(filename, ".voxels")
}
