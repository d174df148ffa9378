package main

import (
	"io"
	"log"
)

const (
	stone      = "minecraft:stone"
	ironOre    = "minecraft:iron_ore"
	cobble     = "minecraft:cobblestone"
	dirt       = "minecraft:dirt"
	coal       = "minecraft:coal"
	torch      = "minecraft:torch"
	water      = "minecraft:water"
	bedrock    = "minecraft:bedrock"
	enderChest = "enderchests:ender_chest"
)

func quietLog() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// rig is a full controller stack on a sim turtle without fuel upkeep.
type rig struct {
	world  *simWorld
	sim    *simTurtle
	move   *moveCtl
	smap   *spatialMap
	dig    *digCtl
	path   *pathBuilder
	miner  *veinMiner
	events []mineEvent
}

// New rig in a world filled with fill; the start cell is always air.
func newRig(fill string) *rig {
	r := &rig{world: newSimWorld(fill)}
	r.world.set(vec3Zero, "")
	r.sim = newSimTurtle(r.world, 100000)
	cfg := defaultConfig()
	sink := eventSinkFunc(func(ev mineEvent) {
		r.events = append(r.events, ev)
	})
	lg := quietLog()
	r.move = newMoveCtl(r.sim, nil, cfg.ForceRetryLimit, lg)
	r.smap = newSpatialMap(r.sim, r.move, newBlockMap())
	r.dig = newDigCtl(r.sim, r.move, r.smap, sink, lg)
	r.path = newPathBuilder(r.sim, r.move, r.smap, cfg.Path.Blocks, cfg.Path.Fluids, lg)
	r.miner = newVeinMiner(r.sim, r.move, r.dig, r.smap, r.path, cfg.Miner, sink, lg)
	return r
}

func (r *rig) turns() int {
	return r.sim.calls["turnLeft"] + r.sim.calls["turnRight"]
}

func (r *rig) eventsOf(kind string) []mineEvent {
	var out []mineEvent
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
