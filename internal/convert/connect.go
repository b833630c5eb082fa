package convert

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

// registerContainment links blocks to the pads and vias they contain.
// A pad belongs to a block when the two share a layer and the pad
// center lies strictly inside the block polygon.
func (c *Converter) registerContainment() {
	for _, block := range c.blocks {
		for _, pad := range c.pads {
			if pad.item.onLayer(block.layer) && geometry.Contains(block.polygon, pad.Center()) {
				block.pads = append(block.pads, pad)
				pad.blocks = append(pad.blocks, block)
			}
		}
		for _, via := range c.vias {
			if via.item.onLayer(block.layer) && geometry.Contains(block.polygon, via.Center()) {
				block.vias = append(block.vias, via)
				via.blocks = append(via.blocks, block)
			}
		}
	}
}

// pruneBlocks drops every block that cannot be reached from an
// energized pad by alternating block and via containment steps, and
// every via that only lived in dropped blocks. Vias contained in no
// block at all are kept: a bare through-connection still conducts.
func (c *Converter) pruneBlocks() {
	c.registerContainment()

	// Blocks then vias, in slice order, become graph nodes.
	g := simple.NewUndirectedGraph()
	blockID := make(map[*Block]int64, len(c.blocks))
	for i, block := range c.blocks {
		blockID[block] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}
	base := int64(len(c.blocks))
	viaID := make(map[*Via]int64, len(c.vias))
	for i, via := range c.vias {
		viaID[via] = base + int64(i)
		g.AddNode(simple.Node(base + int64(i)))
	}
	for _, block := range c.blocks {
		for _, via := range block.vias {
			g.SetEdge(simple.Edge{F: simple.Node(blockID[block]), T: simple.Node(viaID[via])})
		}
	}

	// A component is live when one of its blocks holds an energized
	// pad. Component order from the graph library is not stable, so
	// survivors are collected as a set and the original slices
	// filtered in place to keep the emission order deterministic.
	live := make(map[int64]bool)
	for _, component := range topo.ConnectedComponents(g) {
		energized := false
		for _, node := range component {
			if id := node.ID(); id < base && len(c.blocks[int(id)].pads) > 0 {
				energized = true
				break
			}
		}
		if !energized {
			continue
		}
		for _, node := range component {
			live[node.ID()] = true
		}
	}

	blocks := c.blocks[:0]
	for _, block := range c.blocks {
		if live[blockID[block]] {
			blocks = append(blocks, block)
		}
	}
	c.blocks = blocks

	vias := c.vias[:0]
	for _, via := range c.vias {
		if live[viaID[via]] || len(via.blocks) == 0 {
			vias = append(vias, via)
		}
	}
	c.vias = vias
}
