package traversal

import (
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/types"
	"github.com/chewxy/math32"
)

const (
	// The default upper bound on traversal steps. Rays that need more
	// steps are reported as overflows.
	DefaultMaxIterations = 50

	// The distance reported for rays that did not hit any voxel.
	NoHit float32 = math32.MaxFloat32

	// Per-iteration tint used by the debug visualization.
	IterationTint float32 = 0.02
)

// The color written for rays that overflowed the iteration cap.
var OverflowColor = types.Vec4{1, 0, 1, 1}

// Traversal state reported to observers.
type State uint8

const (
	// Moving to a child of an internal node.
	Descending State = iota

	// Moving to the unvisited sibling of a node on the current path.
	Backtracking

	// The ray escaped the tree, or it overflowed the iteration cap or
	// the encodable tree depth, or it followed a broken node link.
	Terminated
)

func (s State) String() string {
	switch s {
	case Descending:
		return "descending"
	case Backtracking:
		return "backtracking"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// A Step describes one iteration of the traversal loop.
type Step struct {
	Iteration int

	// The node evaluated by this step.
	Node int32

	// True if the node box was hit before the current best distance.
	NodeHit bool

	// True if this step found a closer voxel.
	VoxelHit bool

	// The state the traversal moves to and the backtracking state after
	// this step. NearFar and LeftRight are only tracked by Trace.
	State     State
	Depth     uint32
	NearFar   uint32
	LeftRight uint32
}

// An Observer receives every traversal step.
type Observer func(Step)

// The outcome of a single traversal.
type Result struct {
	// Number of traversal steps.
	Iterations int

	// True if a voxel was hit.
	Hit bool

	// Face normal and grid coordinate of the nearest hit voxel and the
	// distance to it.
	Normal types.Vec3
	Voxel  types.IVec3
	T      float32

	// True if the traversal aborted due to the iteration cap, the max
	// encodable depth or a node link outside the node list. The remaining
	// fields are then meaningless.
	Overflow bool
}

// Get the debug visualization color: the overflow sentinel color or the
// iteration tint plus the hit normal with full opacity.
func (r Result) Color() types.Vec4 {
	if r.Overflow {
		return OverflowColor
	}
	return r.Normal.AddScalar(IterationTint * float32(r.Iterations)).Vec4(1)
}

// A Traverser walks the BVH of a scene. It holds no per-ray state so a single
// instance can be shared by any number of goroutines as long as the scene is
// not modified while traversals are in flight.
type Traverser struct {
	Scene *scene.Scene

	// Max traversal steps; DefaultMaxIterations is used if <= 0.
	MaxIterations int

	// An optional observer for tracking individual traversal steps.
	Observer Observer
}

func (tr *Traverser) maxIterations() int {
	if tr.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return tr.MaxIterations
}

func (tr *Traverser) notify(step Step) {
	if tr.Observer != nil {
		tr.Observer(step)
	}
}

// Trace walks the BVH without a stack. The path from the root is encoded in
// two bit-fields indexed by tree level: leftRight records which child was
// picked when descending through a level and nearFar records whether the
// other child has been visited. Parent links are used for walking back up.
func (tr *Traverser) Trace(ray Ray) Result {
	res := Result{T: NoHit}
	if tr.Scene.Empty() {
		return res
	}

	nodes := tr.Scene.Nodes
	maxIterations := tr.maxIterations()

	var (
		nodeIndex      int32
		depth          uint32
		nearFarStack   uint32
		leftRightStack uint32
	)

	for {
		res.Iterations++
		if res.Iterations > maxIterations || !validNode(nodes, nodeIndex) {
			return tr.abort(res, Step{Iteration: res.Iterations, Node: nodeIndex, Depth: depth, NearFar: nearFarStack, LeftRight: leftRightStack})
		}

		step := Step{Iteration: res.Iterations, Node: nodeIndex}
		node := &nodes[nodeIndex]

		// Boxes are culled against a copy of the best distance; only
		// voxel hits move it.
		nodeT := res.T
		step.NodeHit = IntersectBox(ray.Origin, ray.InvDir, node.Min, node.Max, &nodeT)

		if step.NodeHit && !node.IsLeaf() {
			step.Depth, step.NearFar, step.LeftRight = depth, nearFarStack, leftRightStack
			next, bit, ok := nearChild(nodes, node, ray.Origin)
			if depth >= scene.MaxDepth || !ok {
				return tr.abort(res, step)
			}

			leftRightStack = leftRightStack&^(1<<depth) | bit<<depth
			nearFarStack &^= 1 << depth
			depth++
			nodeIndex = next

			step.State, step.Depth, step.NearFar, step.LeftRight = Descending, depth, nearFarStack, leftRightStack
			tr.notify(step)
			continue
		}

		if step.NodeHit {
			step.VoxelHit = tr.testLeaf(node, ray, &res)
		} else if depth == 0 {
			// Missed the root
			step.State = Terminated
			tr.notify(step)
			return res
		}

		// Pop all levels whose far child has already been visited.
		for depth > 0 && nearFarStack&(1<<(depth-1)) != 0 {
			depth--
			nearFarStack &^= 1 << depth
			leftRightStack &^= 1 << depth
			nodeIndex = nodes[nodeIndex].Parent
			if !validNode(nodes, nodeIndex) {
				step.Depth, step.NearFar, step.LeftRight = depth, nearFarStack, leftRightStack
				return tr.abort(res, step)
			}
		}

		if depth == 0 {
			step.State, step.Depth, step.NearFar, step.LeftRight = Terminated, 0, nearFarStack, leftRightStack
			tr.notify(step)
			return res
		}

		// Switch to the far child of the deepest level with an unvisited one.
		level := depth - 1
		nearFarStack |= 1 << level
		parentIndex := nodes[nodeIndex].Parent
		if !validNode(nodes, parentIndex) {
			step.Depth, step.NearFar, step.LeftRight = depth, nearFarStack, leftRightStack
			return tr.abort(res, step)
		}
		parent := &nodes[parentIndex]
		if leftRightStack&(1<<level) == 0 {
			nodeIndex = parent.Right
		} else {
			nodeIndex = parent.Left
		}

		step.State, step.Depth, step.NearFar, step.LeftRight = Backtracking, depth, nearFarStack, leftRightStack
		tr.notify(step)
	}
}

// Flag res as an overflow and report step as the terminal one.
func (tr *Traverser) abort(res Result, step Step) Result {
	res.Overflow = true
	step.State = Terminated
	tr.notify(step)
	return res
}

func validNode(nodes []scene.Node, index int32) bool {
	return index >= 0 && int(index) < len(nodes)
}

// Test the voxels of a leaf and update res if a closer voxel is found.
func (tr *Traverser) testLeaf(node *scene.Node, ray Ray, res *Result) bool {
	voxel, ok := IntersectLeaf(tr.Scene.Voxels, node.FirstVoxel, node.NumVoxels, ray.Origin, ray.InvDir, &res.T)
	if !ok {
		return false
	}
	res.Hit = true
	res.Voxel = voxel
	res.Normal = EstimateNormal(ray.At(res.T), voxel)
	return true
}

// Pick the child whose box center is closest to the ray origin. This is a
// cheap approximation of front-to-back order; the left child wins ties.
// Returns the child index and 0 for left or 1 for right. The last result is
// false if either child link is outside the node list.
func nearChild(nodes []scene.Node, node *scene.Node, origin types.Vec3) (int32, uint32, bool) {
	if !validNode(nodes, node.Left) || !validNode(nodes, node.Right) {
		return scene.NoNode, 0, false
	}
	dl := distSq(origin, nodes[node.Left].Center())
	dr := distSq(origin, nodes[node.Right].Center())
	if dr < dl {
		return node.Right, 1, true
	}
	return node.Left, 0, true
}

func distSq(a, b types.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}
