package main

import (
	"log"
)

// digCtl couples the dig primitives to the map and to movement.
type digCtl struct {
	api    turtleAPI
	move   *moveCtl
	smap   *spatialMap
	events eventSink
	log    *log.Logger
}

func newDigCtl(api turtleAPI, move *moveCtl, smap *spatialMap, events eventSink, lg *log.Logger) *digCtl {
	return &digCtl{api: api, move: move, smap: smap, events: events, log: lg}
}

// Digs the block on side s if there is one. d is the matching map
// direction. Unbreakable blocks are marked in the map and fail the dig.
func (c *digCtl) digSide(s side, d blockDir, ignoreMap bool) bool {
	if c.api.detect(s) {
		known, _ := c.smap.getBlock(d)
		ok, reason := c.api.dig(s)
		if !ok {
			if reason == digErrUnbreakable {
				c.log.Printf("dig: error: unable to break block %v at %v", d, c.move.blockDirectionToCoordinates(d))
				if !ignoreMap {
					c.markUnbreakable(d)
				}
				return false
			}
			c.log.Printf("dig: warning: dig %v failed: %v", d, reason)
			return false
		}
		if known.Name != "" {
			emit(c.events, mineEvent{
				Kind: evDig,
				Pos:  c.move.blockDirectionToCoordinates(d),
				Name: known.Name,
			})
		}
	}
	if !ignoreMap {
		c.smap.removeBlock(d)
	}
	return true
}

// Marks the block in direction d unbreakable, looking at it first if the
// map does not know what it is.
func (c *digCtl) markUnbreakable(d blockDir) {
	if !c.smap.setBlockUnbreakable(d) {
		c.smap.refresh(d)
		c.smap.setBlockUnbreakable(d)
	}
	entry, _ := c.smap.getBlock(d)
	emit(c.events, mineEvent{
		Kind: evUnbreakable,
		Pos:  c.move.blockDirectionToCoordinates(d),
		Name: entry.Name,
	})
}

func (c *digCtl) digForward(ignoreMap bool) bool {
	return c.digSide(sideFront, dirFront, ignoreMap)
}

func (c *digCtl) digUp(ignoreMap bool) bool {
	return c.digSide(sideUp, dirTop, ignoreMap)
}

func (c *digCtl) digDown(ignoreMap bool) bool {
	return c.digSide(sideDown, dirBottom, ignoreMap)
}

// Digs in any direction, turning first for left, right and rear. With
// resetDirection the turtle turns back afterwards.
func (c *digCtl) dig(d blockDir, ignoreMap, resetDirection bool) bool {
	switch d {
	case dirTop:
		return c.digUp(ignoreMap)
	case dirBottom:
		return c.digDown(ignoreMap)
	case dirFront:
		return c.digForward(ignoreMap)
	case dirLeft:
		c.move.turnLeft()
		ok := c.digForward(ignoreMap)
		if resetDirection {
			c.move.turnRight()
		}
		return ok
	case dirRight:
		c.move.turnRight()
		ok := c.digForward(ignoreMap)
		if resetDirection {
			c.move.turnLeft()
		}
		return ok
	case dirRear:
		c.move.turnAround(rotLeft)
		ok := c.digForward(ignoreMap)
		if resetDirection {
			c.move.turnAround(rotLeft)
		}
		return ok
	}
	return false
}

// Digs in direction d and moves into the space. Fails without moving when
// the dig fails.
func (c *digCtl) digMove(d blockDir, ignoreMap bool) bool {
	if !c.dig(d, ignoreMap, false) {
		return false
	}
	switch d {
	case dirTop:
		return c.move.up(1)
	case dirBottom:
		return c.move.down(1)
	default:
		// dig() left the turtle facing the dug block.
		return c.move.forward(1)
	}
}
