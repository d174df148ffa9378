package main

import (
	"log"
	"strings"
)

type minerState int

const (
	// Executing the fixed shaft template.
	minerAdvancing = minerState(iota)
	// Following an ore vein with history tracking on.
	minerExploring
)

func (s minerState) String() string {
	if s == minerExploring {
		return "EXPLORING"
	}
	return "ADVANCING"
}

// Decides whether a known block is worth following.
type orePredicate func(b blockEntry) bool

// Matches blocks by exact name or by name suffix (e.g. "_ore").
func newOrePredicate(cfg oreConfig) orePredicate {
	return func(b blockEntry) bool {
		if b.Name == "" {
			return false
		}
		if containsName(cfg.Names, b.Name) {
			return true
		}
		for _, suffix := range cfg.Suffixes {
			if strings.HasSuffix(b.Name, suffix) {
				return true
			}
		}
		return false
	}
}

// veinMiner digs the branch mining pattern and chases every ore vein it
// touches, backtracking to where it left the shaft.
type veinMiner struct {
	api    turtleAPI
	move   *moveCtl
	dig    *digCtl
	smap   *spatialMap
	path   *pathBuilder
	events eventSink
	log    *log.Logger

	isOre      orePredicate
	shaftDepth int
	torch      string
	state      minerState
}

func newVeinMiner(api turtleAPI, move *moveCtl, dig *digCtl, smap *spatialMap, path *pathBuilder,
	cfg minerConfig, events eventSink, lg *log.Logger) *veinMiner {
	return &veinMiner{
		api:        api,
		move:       move,
		dig:        dig,
		smap:       smap,
		path:       path,
		events:     events,
		log:        lg,
		isOre:      newOrePredicate(cfg.Ores),
		shaftDepth: cfg.ShaftDepth,
		torch:      cfg.Torch,
		state:      minerAdvancing,
	}
}

// Returns the first direction holding breakable ore.
func (v *veinMiner) findOre(around surroundings) (blockDir, bool) {
	for _, d := range allBlockDirs {
		b := around[d]
		if b.Breakable && v.isOre(b) {
			return d, true
		}
	}
	return dirFront, false
}

// Depth first walk through connected ore. Every step into ore is recorded
// in the move history; when no ore is left around, the last step is undone.
// Ends where it started, with an empty history. Returns the number of ore
// blocks mined.
func (v *veinMiner) attemptMineOreVein() int {
	v.state = minerExploring
	v.move.trackHistory = true
	defer func() {
		v.move.trackHistory = false
		v.state = minerAdvancing
	}()
	start := v.move.position()
	mined := 0
	for {
		ore_dir, found := v.findOre(v.smap.getSurroundings())
		if found {
			target := v.move.blockDirectionToCoordinates(ore_dir)
			if v.dig.digMove(ore_dir, false) {
				mined++
				continue
			}
			// Do not try this block again.
			v.smap.blocks.setUnbreakable(target)
			continue
		}
		if v.move.historyLen() == 0 {
			break
		}
		v.move.reverseMove()
	}
	if !vec3Equal(v.move.position(), start) {
		v.log.Printf("vein: error: exploration ended at %v, started at %v", v.move.position(), start)
	}
	if mined > 0 {
		v.log.Printf("vein: mined %d ore blocks from %v", mined, start)
		emit(v.events, mineEvent{Kind: evVein, Pos: start, Count: mined})
	}
	return mined
}

// Digs n steps forward, two blocks high, chasing veins from both the floor
// and the headroom block.
func (v *veinMiner) mineForward(n int) {
	for i := 0; i < n; i++ {
		if !v.dig.digMove(dirFront, false) {
			v.log.Printf("mine: warning: blocked moving forward at %v", v.move.position())
		}
		v.attemptMineOreVein()
		v.path.ensurePathBlock()
		v.path.ensureNoLiquidBlock()
		if v.dig.digMove(dirTop, false) {
			v.attemptMineOreVein()
			v.move.forceDown(1)
		}
	}
}

func (v *veinMiner) placeTorch() bool {
	torch, ok := findFirstItem(v.api, func(item itemDetail) bool {
		return item.Name == v.torch
	})
	if !ok {
		v.log.Printf("mine: warning: out of torches")
		return false
	}
	v.api.selectSlot(torch.slot)
	if !v.api.place(sideUp) {
		v.log.Printf("mine: warning: failed to place torch")
		return false
	}
	return true
}

// One unit of the shaft template: three steps ahead, a torch, then a branch
// of shaftDepth to the left and one to the right, back in the main shaft.
func (v *veinMiner) mineIteration() {
	v.mineForward(3)
	v.placeTorch()

	v.move.turnLeft()
	v.mineForward(v.shaftDepth)

	v.move.turnAround(rotLeft)
	v.move.forceForward(v.shaftDepth)
	v.mineForward(v.shaftDepth)

	v.move.forceBack(v.shaftDepth)
	v.move.turnLeft()
}
