package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInventoryConfig() inventoryConfig {
	return inventoryConfig{
		Chest:          enderChest,
		ChestTimeoutMs: 1000,
		Keep:           []keepEntry{{Name: cobble, MaxCount: 64}},
		Supply: []supplyEntry{
			{Name: torch, Count: 64},
			{Name: coal, Count: 64},
		},
	}
}

// Inventory controller with a fake clock; every sleep advances it.
func newInvRig(fill string) (*simWorld, *simTurtle, *invCtl) {
	world := newSimWorld(fill)
	world.set(vec3Zero, "")
	sim := newSimTurtle(world, 1000)
	c := newInvCtl(sim, testInventoryConfig(), 8, nil, quietLog())
	clock := time.Unix(0, 0)
	c.now = func() time.Time { return clock }
	c.sleep = func(d time.Duration) { clock = clock.Add(d) }
	return world, sim, c
}

func TestIsInventoryFull(t *testing.T) {
	_, sim, c := newInvRig("")
	for slot := 1; slot < turtleSlots; slot++ {
		sim.giveSlot(slot, stone, 1)
	}
	assert.False(t, c.isInventoryFull())
	sim.giveSlot(turtleSlots, stone, 1)
	assert.True(t, c.isInventoryFull())
}

func TestSortInventoryMerges(t *testing.T) {
	_, sim, c := newInvRig("")
	sim.giveSlot(1, cobble, 10)
	sim.giveSlot(2, dirt, 5)
	sim.giveSlot(4, cobble, 20)
	sim.giveSlot(6, dirt, 7)

	c.sortInventory()
	inv := sim.inv.list()
	assert.Equal(t, 30, inv[1].Count)
	assert.Equal(t, 12, inv[2].Count)
	assert.NotContains(t, inv, 4)
	assert.NotContains(t, inv, 6)
}

func TestClearInventory(t *testing.T) {
	_, sim, c := newInvRig("")
	sim.giveSlot(1, enderChest, 1)
	sim.giveSlot(2, dirt, 10)
	sim.giveSlot(3, torch, 64)
	sim.giveSlot(4, cobble, 30)
	sim.giveSlot(5, ironOre, 3)

	c.clearInventory()
	assert.Zero(t, sim.inv.count(dirt))
	assert.Zero(t, sim.inv.count(ironOre))
	assert.Equal(t, 64, sim.inv.count(torch))
	assert.Equal(t, 30, sim.inv.count(cobble))
	assert.Equal(t, 1, sim.inv.count(enderChest))
}

func TestPlaceChestBehind(t *testing.T) {
	world, sim, c := newInvRig(stone)
	sim.giveSlot(2, enderChest, 1)
	require.True(t, c.placeChest(true))
	assert.Equal(t, enderChest, world.block(vec3{0, 0, -1}))
	assert.Equal(t, vec3{0, 0, -1}, sim.dir, "left facing the chest")
	assert.NotNil(t, world.chests[vec3{0, 0, -1}])
}

func TestPlaceChestWithoutChest(t *testing.T) {
	_, sim, c := newInvRig("")
	assert.False(t, c.placeChest(true))
	assert.Zero(t, sim.calls["turnLeft"])
}

func TestPlaceChestGivesUp(t *testing.T) {
	world, sim, c := newInvRig("")
	world.set(vec3{0, 0, -1}, bedrock)
	sim.giveSlot(1, enderChest, 1)
	assert.False(t, c.placeChest(true))
	assert.Equal(t, 8, sim.calls["dig"])
	assert.Equal(t, vec3Forward, sim.dir)
}

func TestRefreshInventory(t *testing.T) {
	world, sim, c := newInvRig(stone)
	world.ender.insert(itemDetail{Name: cobble, Count: 64}, 1)
	world.ender.insert(itemDetail{Name: torch, Count: 64}, 2)
	world.ender.insert(itemDetail{Name: coal, Count: 64}, 3)
	world.ender.insert(itemDetail{Name: coal, Count: 32}, 4)
	sim.giveSlot(1, enderChest, 1)
	sim.giveSlot(2, dirt, 10)
	sim.giveSlot(3, torch, 10)

	require.True(t, c.refreshInventory())
	assert.Equal(t, 64, sim.inv.count(torch))
	assert.Equal(t, 64, sim.inv.count(coal))
	assert.Equal(t, 1, sim.inv.count(enderChest))
	assert.Zero(t, sim.inv.count(dirt))
	assert.Equal(t, vec3Forward, sim.dir)
	assert.Equal(t, "", world.block(vec3{0, 0, -1}))
	assert.Empty(t, world.chests)

	assert.Equal(t, 10, world.ender.count(dirt))
	assert.Equal(t, 1, world.ender.count(stone), "dug out to make room for the chest")
	assert.Equal(t, 10, world.ender.count(torch))
	assert.Equal(t, 32, world.ender.count(coal))
	first, ok := world.ender.get(1)
	require.True(t, ok)
	assert.Equal(t, cobble, first.Name, "chest layout restored")
	assert.Equal(t, 64, first.Count)
}

func TestResupplyWaitsForChest(t *testing.T) {
	world, sim, c := newInvRig("")
	world.ender.insert(itemDetail{Name: torch, Count: 64}, 1)
	world.ender.insert(itemDetail{Name: coal, Count: 64}, 2)
	sim.giveSlot(1, enderChest, 1)
	require.True(t, c.placeChest(false))

	sim.wrapDelay = 3
	assert.True(t, c.resupplyInventory(time.Second))
	assert.Equal(t, 4, sim.calls["wrap"])
	assert.Equal(t, 64, sim.inv.count(torch))
}

func TestResupplyTimesOut(t *testing.T) {
	_, sim, c := newInvRig("")
	sim.giveSlot(1, enderChest, 1)
	require.True(t, c.placeChest(false))

	sim.wrapDelay = 100
	assert.False(t, c.resupplyInventory(200*time.Millisecond))
	assert.Zero(t, sim.calls["suck"])
}

func TestResupplyQuotaNotMet(t *testing.T) {
	world, sim, c := newInvRig("")
	world.ender.insert(itemDetail{Name: torch, Count: 20}, 5)
	sim.giveSlot(1, enderChest, 1)
	require.True(t, c.placeChest(false))

	assert.False(t, c.resupplyInventory(time.Second))
	assert.Equal(t, 20, sim.inv.count(torch))
}

func TestPullFromChestSlotFullChest(t *testing.T) {
	world, sim, c := newInvRig("")
	for slot := 1; slot <= simChestSlots; slot++ {
		name := cobble
		if slot == 10 {
			name = coal
		}
		world.ender.insert(itemDetail{Name: name, Count: 20}, slot)
	}
	sim.giveSlot(1, enderChest, 1)
	require.True(t, c.placeChest(false))
	chest, ok := sim.wrapChest(sideFront)
	require.True(t, ok)

	assert.Equal(t, 5, c.pullFromChestSlot(chest, 10, 5))
	assert.Equal(t, 5, sim.inv.count(coal))
	assert.Zero(t, sim.inv.count(cobble))
	// The parked stack goes back into the chest, merged wherever it fits.
	assert.Equal(t, 26*20, world.ender.count(cobble))
	tenth, _ := world.ender.get(10)
	assert.Equal(t, coal, tenth.Name)
	assert.Equal(t, 15, tenth.Count)
}
