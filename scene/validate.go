package scene

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyScene = errors.New("scene: no nodes or voxels defined")
	ErrRootParent = errors.New("scene: root node must not have a parent")
)

// Validate checks the structural invariants of the node and voxel lists:
// a single acyclic tree rooted at 0 with consistent parent links, well formed
// leaves and internal nodes, in range leaf voxel ranges that do not overlap
// and a depth that the stackless traversal can encode.
//
// The traversal itself never calls Validate; malformed scenes only surface
// there as iteration cap overflows or wrong pixels.
func (sc *Scene) Validate() error {
	if sc.Empty() {
		return ErrEmptyScene
	}

	if sc.Nodes[0].Parent != NoNode {
		return ErrRootParent
	}

	numNodes := int32(len(sc.Nodes))
	numVoxels := int32(len(sc.Voxels))
	visited := make([]bool, numNodes)

	type voxelRange struct{ first, last, node int32 }
	ranges := make([]voxelRange, 0)

	type frame struct{ index, depth int32 }
	pending := []frame{{0, 0}}
	for len(pending) > 0 {
		f := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if visited[f.index] {
			return fmt.Errorf("scene: node %d is reachable more than once", f.index)
		}
		visited[f.index] = true

		// A tree of MaxDepth+1 levels needs MaxDepth recorded decisions.
		if f.depth > MaxDepth {
			return fmt.Errorf("scene: node %d exceeds max tree depth %d", f.index, MaxDepth)
		}

		node := &sc.Nodes[f.index]
		if node.IsLeaf() {
			if node.NumVoxels <= 0 {
				return fmt.Errorf("scene: leaf node %d has no voxels", f.index)
			}
			if node.FirstVoxel < 0 || node.FirstVoxel+node.NumVoxels > numVoxels {
				return fmt.Errorf("scene: leaf node %d voxel range [%d, %d) out of bounds", f.index, node.FirstVoxel, node.FirstVoxel+node.NumVoxels)
			}
			ranges = append(ranges, voxelRange{node.FirstVoxel, node.FirstVoxel + node.NumVoxels, f.index})
			continue
		}

		if node.NumVoxels != 0 {
			return fmt.Errorf("scene: internal node %d must not own voxels", f.index)
		}

		for _, child := range [2]int32{node.Left, node.Right} {
			if child <= 0 || child >= numNodes {
				return fmt.Errorf("scene: node %d has invalid child index %d", f.index, child)
			}
			if sc.Nodes[child].Parent != f.index {
				return fmt.Errorf("scene: node %d parent link is %d; expected %d", child, sc.Nodes[child].Parent, f.index)
			}
			pending = append(pending, frame{child, f.depth + 1})
		}
	}

	for index, seen := range visited {
		if !seen {
			return fmt.Errorf("scene: node %d is not reachable from the root", index)
		}
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].first < ranges[j].first })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].first < ranges[i-1].last {
			return fmt.Errorf("scene: voxel ranges of leaf nodes %d and %d overlap", ranges[i-1].node, ranges[i].node)
		}
	}

	return nil
}

// Depth returns the maximum depth of the tree; a lone root has depth 0.
func (sc *Scene) Depth() int {
	if sc.Empty() {
		return 0
	}

	type frame struct{ index, depth int32 }
	maxDepth := 0
	pending := []frame{{0, 0}}
	for steps := 0; len(pending) > 0 && steps <= len(sc.Nodes); steps++ {
		f := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if int(f.depth) > maxDepth {
			maxDepth = int(f.depth)
		}
		node := &sc.Nodes[f.index]
		if node.IsLeaf() {
			continue
		}
		for _, child := range [2]int32{node.Left, node.Right} {
			if child > 0 && int(child) < len(sc.Nodes) {
				pending = append(pending, frame{child, f.depth + 1})
			}
		}
	}
	return maxDepth
}
