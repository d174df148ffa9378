package main

// Entries for all six relative directions, indexed by blockDir.
type surroundings [len(allBlockDirs)]blockEntry

// How much of the left/rear/right ring still needs a physical look.
type sweepKind int

const (
	sweepAll = sweepKind(iota)
	sweepLeft
	sweepRight
	sweepNone
)

// spatialMap binds the block map to the turtle's current pose.
type spatialMap struct {
	api    turtleAPI
	move   *moveCtl
	blocks *blockMap
}

func newSpatialMap(api turtleAPI, move *moveCtl, blocks *blockMap) *spatialMap {
	return &spatialMap{api: api, move: move, blocks: blocks}
}

func dirSide(d blockDir) (side, bool) {
	switch d {
	case dirFront:
		return sideFront, true
	case dirTop:
		return sideUp, true
	case dirBottom:
		return sideDown, true
	}
	return sideFront, false
}

// Inspects a block the turtle can see without turning and writes the result
// into the map. Nothing there is recorded as checked air.
func (s *spatialMap) refresh(d blockDir) blockEntry {
	sd, ok := dirSide(d)
	if !ok {
		entry, _ := s.getBlock(d)
		return entry
	}
	pos := s.move.blockDirectionToCoordinates(d)
	info, found := s.api.inspect(sd)
	if !found || info.Name == "" {
		s.blocks.removeBlock(pos)
		entry, _ := s.blocks.getBlockEntry(pos)
		return entry
	}
	return s.blocks.setBlock(pos, info.Name)
}

// Decides which of left/rear/right still need inspecting.
func (s *spatialMap) sweepNeeded() sweepKind {
	rear := s.blocks.isBlockChecked(s.move.blockDirectionToCoordinates(dirRear))
	left := s.blocks.isBlockChecked(s.move.blockDirectionToCoordinates(dirLeft))
	right := s.blocks.isBlockChecked(s.move.blockDirectionToCoordinates(dirRight))
	if rear {
		switch {
		case left && right:
			return sweepNone
		case left:
			return sweepRight
		case right:
			return sweepLeft
		}
	}
	return sweepAll
}

// Returns what is around the turtle. Front, top and bottom are always
// inspected; left, rear and right come from the map when already known so
// backtracking through visited cells costs no turns.
func (s *spatialMap) getSurroundings() surroundings {
	var out surroundings
	// The turtle stands in air.
	s.blocks.removeBlock(s.move.position())
	out[dirFront] = s.refresh(dirFront)
	out[dirTop] = s.refresh(dirTop)
	out[dirBottom] = s.refresh(dirBottom)

	switch s.sweepNeeded() {
	case sweepRight:
		s.move.withoutHistory(func() bool {
			s.move.turnRight()
			s.refresh(dirFront)
			return s.move.turnLeft()
		})
	case sweepLeft:
		s.move.withoutHistory(func() bool {
			s.move.turnLeft()
			s.refresh(dirFront)
			return s.move.turnRight()
		})
	case sweepAll:
		s.move.withoutHistory(func() bool {
			for i := 0; i < 3; i++ {
				s.move.turnLeft()
				s.refresh(dirFront)
			}
			return s.move.turnLeft()
		})
	}

	for _, d := range []blockDir{dirRear, dirLeft, dirRight} {
		out[d], _ = s.getBlock(d)
	}
	return out
}

func (s *spatialMap) getBlock(d blockDir) (blockEntry, bool) {
	return s.blocks.getBlockEntry(s.move.blockDirectionToCoordinates(d))
}

func (s *spatialMap) setBlock(d blockDir, name string) blockEntry {
	return s.blocks.setBlock(s.move.blockDirectionToCoordinates(d), name)
}

func (s *spatialMap) removeBlock(d blockDir) bool {
	return s.blocks.removeBlock(s.move.blockDirectionToCoordinates(d))
}

func (s *spatialMap) setBlockUnbreakable(d blockDir) bool {
	return s.blocks.setUnbreakable(s.move.blockDirectionToCoordinates(d))
}
