package main

import (
	"log"
)

// pathBuilder places blocks to keep the tunnel floor walkable and to wall
// off fluids.
type pathBuilder struct {
	api  turtleAPI
	move *moveCtl
	smap *spatialMap
	log  *log.Logger
	// Building blocks, preferred in list order.
	blocks []string
	fluids []string
}

func newPathBuilder(api turtleAPI, move *moveCtl, smap *spatialMap, blocks, fluids []string, lg *log.Logger) *pathBuilder {
	return &pathBuilder{api: api, move: move, smap: smap, blocks: blocks, fluids: fluids, log: lg}
}

// Returns the carried building block with the lowest whitelist index,
// lowest slot first on ties.
func (p *pathBuilder) getBuildingBlock() (itemSlot, bool) {
	var best itemSlot
	best_idx := -1
	forSlot(p.api, func(slot int, item itemDetail, ok bool) bool {
		if !ok {
			return false
		}
		idx := indexOfName(p.blocks, item.Name)
		if idx < 0 {
			return false
		}
		if best_idx < 0 || idx < best_idx {
			best = itemSlot{slot: slot, item: item}
			best_idx = idx
		}
		return best_idx == 0
	})
	return best, best_idx >= 0
}

// Places the selected block on a side, turning for left/right/rear.
func (p *pathBuilder) placeBlockOnSide(d blockDir, resetDirection bool) bool {
	var ok bool
	switch d {
	case dirTop:
		ok = p.api.place(sideUp)
	case dirBottom:
		ok = p.api.place(sideDown)
	case dirFront:
		ok = p.api.place(sideFront)
	case dirLeft:
		p.move.turnLeft()
		ok = p.api.place(sideFront)
		if resetDirection {
			p.move.turnRight()
		}
	case dirRight:
		p.move.turnRight()
		ok = p.api.place(sideFront)
		if resetDirection {
			p.move.turnLeft()
		}
	case dirRear:
		p.move.turnAround(rotLeft)
		ok = p.api.place(sideFront)
		if resetDirection {
			p.move.turnAround(rotLeft)
		}
	}
	return ok
}

// Makes sure the block below is solid ground.
func (p *pathBuilder) ensurePathBlock() {
	below, found := p.api.inspect(sideDown)
	if found && below.Name != "" && !containsName(p.fluids, below.Name) {
		return
	}
	block, ok := p.getBuildingBlock()
	if !ok {
		p.log.Printf("path: warning: no valid building blocks in inventory")
		return
	}
	p.api.selectSlot(block.slot)
	if !p.api.place(sideDown) {
		p.log.Printf("path: warning: failed to place path block")
		return
	}
	p.smap.setBlock(dirBottom, block.item.Name)
}

// Walls off every neighbouring fluid block. Facing is restored.
func (p *pathBuilder) ensureNoLiquidBlock() {
	around := p.smap.getSurroundings()
	for _, d := range allBlockDirs {
		if !containsName(p.fluids, around[d].Name) {
			continue
		}
		block, ok := p.getBuildingBlock()
		if !ok {
			p.log.Printf("path: warning: no valid building blocks in inventory")
			return
		}
		pos := p.move.blockDirectionToCoordinates(d)
		p.api.selectSlot(block.slot)
		if !p.placeBlockOnSide(d, true) {
			p.log.Printf("path: warning: failed to place fluid wall block %v", d)
			continue
		}
		p.smap.blocks.setBlock(pos, block.item.Name)
	}
}
