package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

type turtleID string

// An itemID is the item name, e.g. "minecraft:coal".
type itemID string

type icount struct {
	FreeSlots int            `json:"free_slots"`
	Grouped   map[itemID]int `json:"grouped"`
}

// What sync clients see of a turtle.
type turtleStatus struct {
	Label       turtleID  `json:"label"`
	Online      bool      `json:"online"`
	CurAction   string    `json:"cur_action"`
	State       string    `json:"state"`
	CurPos      vec3      `json:"cur_pos"`
	CurRot      vec3      `json:"cur_rot"`
	FuelLvl     int       `json:"fuel_lvl"`
	Iteration   int       `json:"iteration"`
	OresMined   int       `json:"ores_mined"`
	KnownBlocks int       `json:"known_blocks"`
	InvCount    icount    `json:"inv_count"`
	FatalErr    string    `json:"fatal_err,omitempty"`
	Updated     time.Time `json:"updated"`
}

func inventoryCount(api turtleAPI) icount {
	out := icount{Grouped: map[itemID]int{}}
	forSlot(api, func(_ int, item itemDetail, ok bool) bool {
		if !ok {
			out.FreeSlots++
			return false
		}
		out.Grouped[itemID(item.Name)] += item.Count
		return false
	})
	return out
}

// turtleBrain owns one turtle's controllers and runs its outer loop. It is
// used from a single goroutine.
type turtleBrain struct {
	label turtleID
	api   turtleAPI
	log   *log.Logger
	hub   *syncHub
	stats *mineStats
	sinks eventSinks

	inv   *invCtl
	fuel  *fuelCtl
	move  *moveCtl
	smap  *spatialMap
	dig   *digCtl
	path  *pathBuilder
	miner *veinMiner

	action     string
	iteration  int
	iter_ores  int
	total_ores int
}

func newTurtleBrain(label turtleID, api turtleAPI, cfg config, hub *syncHub, stats *mineStats, journal *eventJournal) *turtleBrain {
	b := &turtleBrain{
		label: label,
		api:   api,
		log:   log.New(log.Writer(), fmt.Sprintf("[ninja][%v] ", label), log.Flags()),
		hub:   hub,
		stats: stats,
	}
	if journal != nil {
		b.sinks = append(b.sinks, journal)
	}
	if stats != nil {
		b.sinks = append(b.sinks, stats)
	}
	b.inv = newInvCtl(api, cfg.Inventory, cfg.ForceRetryLimit, b, b.log)
	b.fuel = newFuelCtl(api, cfg.Fuel, b.inv, b, b.log)
	b.move = newMoveCtl(api, b.fuel, cfg.ForceRetryLimit, b.log)
	b.smap = newSpatialMap(api, b.move, newBlockMap())
	b.dig = newDigCtl(api, b.move, b.smap, b, b.log)
	b.path = newPathBuilder(api, b.move, b.smap, cfg.Path.Blocks, cfg.Path.Fluids, b.log)
	b.miner = newVeinMiner(api, b.move, b.dig, b.smap, b.path, cfg.Miner, b, b.log)
	if stats != nil {
		last, err := stats.lastIteration(label)
		if err != nil {
			b.log.Printf("stats: error: %v", err)
		}
		b.iteration = last
	}
	return b
}

// Stamps controller events with the turtle and time and passes them on.
func (b *turtleBrain) event(ev mineEvent) {
	ev.Turtle = b.label
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if ev.Kind == evVein {
		b.iter_ores += ev.Count
		b.total_ores += ev.Count
	}
	b.sinks.event(ev)
}

func (b *turtleBrain) alive() bool {
	return !linkLost(b.api)
}

func (b *turtleBrain) status() turtleStatus {
	st := turtleStatus{
		Label:       b.label,
		Online:      b.alive(),
		CurAction:   b.action,
		State:       b.miner.state.String(),
		CurPos:      b.move.position(),
		CurRot:      b.move.direction(),
		Iteration:   b.iteration,
		OresMined:   b.total_ores,
		KnownBlocks: b.smap.blocks.len(),
		Updated:     time.Now(),
	}
	if st.Online {
		st.FuelLvl = b.api.getFuelLevel()
		st.InvCount = inventoryCount(b.api)
	}
	if lc, ok := b.api.(linkChecker); ok && lc.linkErr() != nil {
		st.FatalErr = lc.linkErr().Error()
	}
	return st
}

func (b *turtleBrain) publish() {
	if b.hub == nil {
		return
	}
	raw, err := json.Marshal(b.status())
	if err != nil {
		b.log.Printf("sync: error: %v", err)
		return
	}
	b.hub.put("turtle/"+string(b.label), raw)
}

// One pass of the outer loop: inventory upkeep, fuel, one mining
// iteration, then status and stats.
func (b *turtleBrain) tick() {
	started := time.Now()
	b.iteration++
	b.iter_ores = 0

	b.action = "inventory"
	b.inv.sortInventory()
	if b.inv.isInventoryFull() {
		if !b.inv.refreshInventory() {
			// No supply chest, dump junk where we stand.
			b.inv.clearInventory()
		}
	}
	b.action = "fuel"
	b.fuel.ensureFuel()
	b.action = "mine"
	b.miner.mineIteration()
	b.action = "idle"

	b.log.Printf("work: iteration %d done at %v, %d ore", b.iteration, b.move.position(), b.iter_ores)
	b.event(mineEvent{Kind: evIteration, Pos: b.move.position(), Count: b.iter_ores})
	b.publish()
	if b.stats != nil {
		err := b.stats.recordIteration(iterationStats{
			Turtle:    b.label,
			Iteration: b.iteration,
			Started:   started,
			Ended:     time.Now(),
			Pos:       b.move.position(),
			Fuel:      b.api.getFuelLevel(),
			Ores:      b.iter_ores,
		})
		if err != nil {
			b.log.Printf("stats: error: %v", err)
		}
	}
}

// Ticks until the turtle goes away or maxIterations ticks ran. 0 means no
// limit. Returns the number of ticks run.
func (b *turtleBrain) run(maxIterations int) int {
	n := 0
	b.publish()
	for b.alive() && (maxIterations == 0 || n < maxIterations) {
		b.tick()
		n++
	}
	if !b.alive() {
		b.action = "offline"
		b.publish()
	}
	return n
}

// workMgr accepts turtle connections and runs one brain per turtle.
type workMgr struct {
	cfg     config
	hub     *syncHub
	stats   *mineStats
	journal *eventJournal

	mu       sync.Mutex
	sessions map[turtleID]*turtleBrain
}

func newWorkMgr(cfg config, hub *syncHub, stats *mineStats, journal *eventJournal) *workMgr {
	return &workMgr{
		cfg:      cfg,
		hub:      hub,
		stats:    stats,
		journal:  journal,
		sessions: map[turtleID]*turtleBrain{},
	}
}

// Registers a session. Only one brain may drive a turtle at a time.
func (m *workMgr) claim(label turtleID, api turtleAPI) (*turtleBrain, bool) {
	m.mu.Lock()
	if _, busy := m.sessions[label]; busy {
		m.mu.Unlock()
		return nil, false
	}
	m.sessions[label] = nil
	m.mu.Unlock()
	// Building a brain already talks to the turtle, do it unlocked.
	b := newTurtleBrain(label, api, m.cfg, m.hub, m.stats, m.journal)
	m.mu.Lock()
	m.sessions[label] = b
	m.mu.Unlock()
	return b, true
}

func (m *workMgr) release(label turtleID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, label)
}

func (m *workMgr) online() []turtleID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]turtleID, 0, len(m.sessions))
	for label := range m.sessions {
		out = append(out, label)
	}
	return out
}

// Runs a brain on api until it ends.
func (m *workMgr) runSession(label turtleID, api turtleAPI, maxIterations int) error {
	b, ok := m.claim(label, api)
	if !ok {
		return fmt.Errorf("turtle %v already has a session", label)
	}
	defer m.release(label)
	log.Printf("work: turtle %v: session started", label)
	n := b.run(maxIterations)
	log.Printf("work: turtle %v: session ended after %d iterations", label, n)
	if lc, ok := api.(linkChecker); ok && lc.linkErr() != nil {
		return lc.linkErr()
	}
	return nil
}

// Websocket handler for kernels, <key>/turtle?label=L.
func (m *workMgr) serveTurtle(ws *websocket.Conn) {
	defer ws.Close()
	label := turtleID(strings.TrimSpace(ws.Request().URL.Query().Get("label")))
	if label == "" {
		log.Printf("work: error: turtle connected without label from %v", ws.Request().RemoteAddr)
		return
	}
	timeout := time.Duration(m.cfg.CallTimeoutMs) * time.Millisecond
	api := newRemoteTurtle(ws, label, timeout)
	if err := m.runSession(label, api, 0); err != nil {
		log.Printf("work: turtle %v: %v", label, err)
	}
}
