package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimInventoryInsert(t *testing.T) {
	inv := newSimInventory(4)
	assert.Equal(t, 10, inv.insert(itemDetail{Name: coal, Count: 10}, 3))
	assert.Zero(t, inv.insert(itemDetail{Name: stone, Count: 1}, 3), "slot holds another item")
	// Anywhere: existing stacks first, then the lowest empty slot.
	assert.Equal(t, 60, inv.insert(itemDetail{Name: coal, Count: 60}, 0))
	got, _ := inv.get(3)
	assert.Equal(t, simStackSize, got.Count)
	got, _ = inv.get(1)
	assert.Equal(t, 6, got.Count)

	taken := inv.take(3, 100)
	assert.Equal(t, simStackSize, taken.Count)
	_, ok := inv.get(3)
	assert.False(t, ok)
	assert.Equal(t, 6, inv.count(coal))
}

func TestSimTurtleDig(t *testing.T) {
	w := newSimWorld(stone)
	w.set(vec3Zero, "")
	w.set(vec3Up, "")
	w.set(vec3Down, bedrock)
	sim := newSimTurtle(w, 10)

	ok, _ := sim.dig(sideFront)
	assert.True(t, ok)
	assert.Equal(t, 1, sim.inv.count(stone))
	ok, reason := sim.dig(sideUp)
	assert.False(t, ok)
	assert.Equal(t, digErrNothing, reason)
	ok, reason = sim.dig(sideDown)
	assert.False(t, ok)
	assert.Equal(t, digErrUnbreakable, reason)
	assert.Equal(t, 1, sim.calls["dig"])
	assert.Equal(t, 1, sim.calls["digUp"])
	assert.Equal(t, 1, sim.calls["digDown"])
}

func TestSimTurtleMovesNeedFuel(t *testing.T) {
	sim := newSimTurtle(newSimWorld(""), 1)
	assert.True(t, sim.forward())
	assert.False(t, sim.forward())
	assert.Equal(t, vec3Forward, sim.pos)

	w := newSimWorld("")
	w.set(vec3{0, 0, 1}, water)
	sim = newSimTurtle(w, 5)
	assert.True(t, sim.forward(), "fluids do not block")
	assert.False(t, sim.detect(sideFront))
}

func TestSimChestSuckTakesFirstSlot(t *testing.T) {
	w := newSimWorld("")
	w.ender.insert(itemDetail{Name: coal, Count: 5}, 4)
	w.ender.insert(itemDetail{Name: torch, Count: 5}, 9)
	sim := newSimTurtle(w, 5)
	sim.give(w.chestItem, 1)
	require.True(t, sim.place(sideUp))

	require.True(t, sim.suck(sideUp, 64))
	assert.Equal(t, 5, sim.inv.count(coal))
	assert.Zero(t, sim.inv.count(torch))

	chest, ok := sim.wrapChest(sideUp)
	require.True(t, ok)
	assert.Equal(t, 3, chest.moveItems(9, 3, 1))
	assert.Zero(t, chest.moveItems(9, 3, 9))
	first, _ := chest.getItemDetail(1)
	assert.Equal(t, torch, first.Name)
	assert.Len(t, chest.list(), 2)
}

func TestSimWorldGenerate(t *testing.T) {
	w := newSimWorld(stone)
	w.generate(simConfig{Seed: 7, Radius: 8, Veins: 40, VeinSize: 5})
	ores := 0
	for pos, name := range w.blocks {
		assert.NotEqual(t, vec3Zero, pos)
		if name != bedrock && name != water {
			ores++
		}
	}
	assert.Positive(t, ores)
}
