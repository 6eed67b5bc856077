package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/voxtrace/asset"
	"github.com/achilleasa/voxtrace/log"
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/scene/compiler"
	"github.com/achilleasa/voxtrace/types"
)

// Reads plain text voxel lists. Each non-empty line holds the integer grid
// coordinate of one voxel as "x y z"; everything after a '#' is ignored.
type voxelListReader struct {
	logger        log.Logger
	maxLeafVoxels int
}

func newVoxelListReader(maxLeafVoxels int) *voxelListReader {
	return &voxelListReader{
		logger:        log.New("voxel list reader"),
		maxLeafVoxels: maxLeafVoxels,
	}
}

// Parse voxel list and compile it into a scene.
func (r *voxelListReader) Read(res *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing voxel list from "%s"`, res.Path())
	start := time.Now()

	coords, err := parseVoxelList(res)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("parsed %d voxels in %d ms", len(coords), time.Since(start).Nanoseconds()/1e6)

	return compiler.Compile(coords, r.maxLeafVoxels)
}

func parseVoxelList(src io.Reader) ([]types.IVec3, error) {
	coords := make([]types.IVec3, 0)
	scanner := bufio.NewScanner(src)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}

		fields := strings.Fields(strings.Replace(line, ",", " ", -1))
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("voxel list: line %d: expected 3 coordinates; got %d", lineNum, len(fields))
		}

		var p types.IVec3
		for i, field := range fields {
			v, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("voxel list: line %d: invalid coordinate %q", lineNum, field)
			}
			p[i] = int32(v)
		}
		coords = append(coords, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return coords, nil
}
