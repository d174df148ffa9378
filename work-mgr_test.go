package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkConfig() config {
	cfg := defaultConfig()
	cfg.Sim.Veins = 0
	return cfg
}

// A sim turtle whose link can be cut.
type flakyTurtle struct {
	*simTurtle
	err error
}

func (f *flakyTurtle) linkErr() error {
	return f.err
}

func lastStatus(t *testing.T, hub *syncHub, label turtleID) turtleStatus {
	raw, ok := hub.since(0).docs["turtle/"+string(label)]
	require.True(t, ok, "status published")
	var st turtleStatus
	require.NoError(t, json.Unmarshal(raw, &st))
	return st
}

func TestBrainRunsIterations(t *testing.T) {
	cfg := testWorkConfig()
	stats := openTestStats(t)
	journal := newEventJournal(t.TempDir())
	defer journal.close()
	hub := newSyncHub()
	_, sim := newSimSession(cfg)

	b := newTurtleBrain("sim.1", sim, cfg, hub, stats, journal)
	assert.Equal(t, 2, b.run(2))
	assert.Equal(t, 2, b.iteration)
	assert.Equal(t, vec3{0, 0, 6}, b.move.position())
	assert.Equal(t, vec3Forward, b.move.direction())
	assert.Positive(t, sim.fuel, "refueled from carried coal")
	assert.Positive(t, sim.calls["refuel"])

	st := lastStatus(t, hub, "sim.1")
	assert.True(t, st.Online)
	assert.Equal(t, 2, st.Iteration)
	assert.Equal(t, vec3{0, 0, 6}, st.CurPos)
	assert.Equal(t, "idle", st.CurAction)
	assert.Equal(t, minerAdvancing.String(), st.State)
	assert.Equal(t, 1, st.InvCount.Grouped[itemID(cfg.Inventory.Chest)])

	n, _, err := stats.iterationTotals("sim.1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	mined, err := stats.minedTotals("sim.1")
	require.NoError(t, err)
	assert.Positive(t, mined[stone])

	// A new session for the same turtle keeps counting.
	b = newTurtleBrain("sim.1", sim, cfg, hub, stats, journal)
	assert.Equal(t, 2, b.iteration)
}

func TestBrainCountsVeinOre(t *testing.T) {
	cfg := testWorkConfig()
	world, sim := newSimSession(cfg)
	world.set(vec3{0, 0, 4}, ironOre)
	world.set(vec3{0, 0, 5}, ironOre)

	b := newTurtleBrain("sim.2", sim, cfg, nil, nil, nil)
	b.tick()
	assert.Equal(t, 2, b.iter_ores)
	assert.Equal(t, 2, b.total_ores)
	assert.Equal(t, 2, sim.inv.count(ironOre))
}

func TestBrainClearsFullInventory(t *testing.T) {
	cfg := testWorkConfig()
	world, sim := newSimSession(cfg)
	for i := 0; sim.inv.size() > len(sim.inv.list()); i++ {
		sim.give(fmt.Sprintf("minecraft:junk_%d", i), 1)
	}
	b := newTurtleBrain("sim.3", sim, cfg, nil, nil, nil)
	require.True(t, b.inv.isInventoryFull())

	b.tick()
	assert.Equal(t, 1, world.ender.count("minecraft:junk_0"))
	assert.Zero(t, sim.inv.count("minecraft:junk_0"))
	assert.Equal(t, 1, sim.inv.count(cfg.Inventory.Chest))
	assert.Empty(t, world.chests)
}

func TestBrainStopsOnLinkLoss(t *testing.T) {
	cfg := testWorkConfig()
	_, sim := newSimSession(cfg)
	api := &flakyTurtle{simTurtle: sim, err: errors.New("link gone")}
	hub := newSyncHub()
	mgr := newWorkMgr(cfg, hub, nil, nil)

	err := mgr.runSession("sim.4", api, 0)
	assert.EqualError(t, err, "link gone")
	assert.Empty(t, mgr.online())
	st := lastStatus(t, hub, "sim.4")
	assert.False(t, st.Online)
	assert.Equal(t, "offline", st.CurAction)
	assert.Equal(t, "link gone", st.FatalErr)
}

func TestWorkMgrClaim(t *testing.T) {
	cfg := testWorkConfig()
	_, sim := newSimSession(cfg)
	mgr := newWorkMgr(cfg, nil, nil, nil)

	b, ok := mgr.claim("t1", sim)
	require.True(t, ok)
	require.NotNil(t, b)
	_, ok = mgr.claim("t1", sim)
	assert.False(t, ok, "one session per turtle")
	assert.Equal(t, []turtleID{"t1"}, mgr.online())
	assert.Error(t, mgr.runSession("t1", sim, 1))

	mgr.release("t1")
	_, ok = mgr.claim("t1", sim)
	assert.True(t, ok)
}

func TestInventoryCount(t *testing.T) {
	sim := newSimTurtle(newSimWorld(""), 0)
	sim.giveSlot(1, coal, 10)
	sim.giveSlot(5, coal, 3)
	sim.giveSlot(9, torch, 1)
	c := inventoryCount(sim)
	assert.Equal(t, turtleSlots-3, c.FreeSlots)
	assert.Equal(t, map[itemID]int{coal: 13, torch: 1}, c.Grouped)
}
