package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	leafs := 0
	maxLeafVoxels := int32(0)
	for index := range sc.Nodes {
		node := &sc.Nodes[index]
		if !node.IsLeaf() {
			continue
		}
		leafs++
		if node.NumVoxels > maxLeafVoxels {
			maxLeafVoxels = node.NumVoxels
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"BVH", "---", fmt.Sprintf("%d", len(sc.Nodes)), fmtSize(sc.Nodes)})
	table.Append([]string{"", "Internal nodes", fmt.Sprintf("%d", len(sc.Nodes)-leafs), ""})
	table.Append([]string{"", "Leafs", fmt.Sprintf("%d", leafs), ""})
	table.Append([]string{"", "Max depth", fmt.Sprintf("%d", sc.Depth()), ""})
	table.Append([]string{"", "Max voxels/leaf", fmt.Sprintf("%d", maxLeafVoxels), ""})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Geometry", "Voxels", fmt.Sprintf("%d", len(sc.Voxels)), fmtSize(sc.Voxels)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.Nodes, sc.Voxels), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
