package scene

import "github.com/achilleasa/voxtrace/types"

// NoNode marks an absent child or parent link.
const NoNode int32 = -1

// MaxDepth is the deepest tree level the stackless traversal can encode.
// Its backtracking state uses one bit per level in a uint32.
const MaxDepth = 32

// Bvh node definition. The field order mirrors the record layout consumed by
// GPU kernels: {min, left, max, right, parent, firstVoxel, numVoxels}.
//
// A node is either internal (NumVoxels == 0, both children set) or a leaf
// (Left == Right == NoNode, NumVoxels > 0). A leaf owns the voxel range
// [FirstVoxel, FirstVoxel+NumVoxels).
type Node struct {
	Min  types.Vec3
	Left int32

	Max   types.Vec3
	Right int32

	Parent     int32
	FirstVoxel int32
	NumVoxels  int32
}

// Returns true if this node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Left == NoNode && n.Right == NoNode
}

// Get the center of the node bounding box.
func (n *Node) Center() types.Vec3 {
	return n.Min.Add(n.Max).Mul(0.5)
}

// Set bounding box.
func (n *Node) SetBBox(bbox [2]types.Vec3) {
	n.Min = bbox[0]
	n.Max = bbox[1]
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right int32) {
	n.Left = left
	n.Right = right
	n.FirstVoxel = 0
	n.NumVoxels = 0
}

// Turn node into a leaf owning count voxels starting at first.
func (n *Node) SetVoxels(first, count int32) {
	n.Left = NoNode
	n.Right = NoNode
	n.FirstVoxel = first
	n.NumVoxels = count
}

// A voxel occupies the unit cube [P, P+1] on each axis.
type Voxel struct {
	P types.IVec3
}

// Get the voxel bounding box.
func (v Voxel) BBox() [2]types.Vec3 {
	return [2]types.Vec3{v.P.Vec3(), v.P.AddScalar(1).Vec3()}
}

// Get the voxel center.
func (v Voxel) Center() types.Vec3 {
	return v.P.Vec3().AddScalar(0.5)
}

// A compiled scene. Both lists are built once and are read-only while any
// traversal is in flight; entries reference each other by index. The root
// node is always stored at index 0.
type Scene struct {
	Nodes  []Node
	Voxels []Voxel
}

// Returns true if the scene contains no geometry.
func (sc *Scene) Empty() bool {
	return sc == nil || len(sc.Nodes) == 0 || len(sc.Voxels) == 0
}
