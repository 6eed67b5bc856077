package traversal

import "github.com/achilleasa/voxtrace/scene"

type frame struct {
	node  int32
	depth uint32
}

// TraceStack walks the BVH using an explicit stack of unvisited far
// children. It visits nodes in the same order as Trace and reports the same
// iteration counts; it exists as a reference for validating Trace and for
// hosts where the extra per-ray memory is not a concern.
func (tr *Traverser) TraceStack(ray Ray) Result {
	res := Result{T: NoHit}
	if tr.Scene.Empty() {
		return res
	}

	nodes := tr.Scene.Nodes
	maxIterations := tr.maxIterations()
	stack := make([]frame, 0, scene.MaxDepth)

	var (
		nodeIndex int32
		depth     uint32
	)

	for {
		res.Iterations++
		if res.Iterations > maxIterations || !validNode(nodes, nodeIndex) {
			return tr.abort(res, Step{Iteration: res.Iterations, Node: nodeIndex, Depth: depth})
		}

		step := Step{Iteration: res.Iterations, Node: nodeIndex}
		node := &nodes[nodeIndex]

		nodeT := res.T
		step.NodeHit = IntersectBox(ray.Origin, ray.InvDir, node.Min, node.Max, &nodeT)

		if step.NodeHit && !node.IsLeaf() {
			step.Depth = depth
			near, bit, ok := nearChild(nodes, node, ray.Origin)
			if depth >= scene.MaxDepth || !ok {
				return tr.abort(res, step)
			}

			far := node.Left
			if bit == 0 {
				far = node.Right
			}
			depth++
			stack = append(stack, frame{node: far, depth: depth})
			nodeIndex = near

			step.State, step.Depth = Descending, depth
			tr.notify(step)
			continue
		} else if step.NodeHit {
			step.VoxelHit = tr.testLeaf(node, ray, &res)
		}

		if len(stack) == 0 {
			step.State = Terminated
			tr.notify(step)
			return res
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodeIndex, depth = top.node, top.depth

		step.State, step.Depth = Backtracking, depth
		tr.notify(step)
	}
}
