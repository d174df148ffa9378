package main

import (
	"log"
	"sort"
	"time"
)

// Item kept in the inventory when clearing. MaxCount 0 keeps every item;
// otherwise anything above MaxCount is dropped.
type keepEntry struct {
	Name     string `yaml:"name" json:"name"`
	MaxCount int    `yaml:"max_count" json:"max_count"`
}

// Item topped up from the supply chest.
type supplyEntry struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

type itemSlot struct {
	slot int
	item itemDetail
}

// Calls fn for every turtle slot, empty or not. Stops when fn returns true.
func forSlot(api turtleAPI, fn func(slot int, item itemDetail, ok bool) bool) {
	for slot := 1; slot <= turtleSlots; slot++ {
		item, ok := api.getItemDetail(slot)
		if fn(slot, item, ok) {
			return
		}
	}
}

// Returns the first occupied slot whose item matches pred.
func findFirstItem(api turtleAPI, pred func(item itemDetail) bool) (itemSlot, bool) {
	var out itemSlot
	found := false
	forSlot(api, func(slot int, item itemDetail, ok bool) bool {
		if ok && pred(item) {
			out = itemSlot{slot: slot, item: item}
			found = true
		}
		return found
	})
	return out, found
}

func countItem(api turtleAPI, name string) int {
	n := 0
	forSlot(api, func(_ int, item itemDetail, ok bool) bool {
		if ok && item.Name == name {
			n += item.Count
		}
		return false
	})
	return n
}

func indexOfName(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func containsName(names []string, name string) bool {
	return indexOfName(names, name) >= 0
}

// invCtl keeps the turtle inventory sorted, clears junk into a supply chest
// and tops up supplies from it.
type invCtl struct {
	api    turtleAPI
	log    *log.Logger
	events eventSink

	chestID      string
	keep         []keepEntry
	supply       []supplyEntry
	chestTimeout time.Duration
	forceLimit   int

	now   func() time.Time
	sleep func(time.Duration)
}

func newInvCtl(api turtleAPI, cfg inventoryConfig, forceLimit int, events eventSink, lg *log.Logger) *invCtl {
	keep := make([]keepEntry, 0, len(cfg.Supply)+len(cfg.Keep)+1)
	for _, s := range cfg.Supply {
		keep = append(keep, keepEntry{Name: s.Name, MaxCount: s.Count})
	}
	keep = append(keep, cfg.Keep...)
	keep = append(keep, keepEntry{Name: cfg.Chest})
	c := &invCtl{
		api:          api,
		log:          lg,
		events:       events,
		chestID:      cfg.Chest,
		keep:         keep,
		supply:       cfg.Supply,
		chestTimeout: time.Duration(cfg.ChestTimeoutMs) * time.Millisecond,
		forceLimit:   forceLimit,
		now:          time.Now,
		sleep:        time.Sleep,
	}
	if _, ok := c.findChest(); !ok {
		c.log.Printf("inventory: warning: no supply chest (%v) in inventory", c.chestID)
	}
	return c
}

func (c *invCtl) findChest() (int, bool) {
	found, ok := findFirstItem(c.api, func(item itemDetail) bool {
		return item.Name == c.chestID
	})
	return found.slot, ok
}

func (c *invCtl) keepEntryFor(name string) (keepEntry, bool) {
	for _, e := range c.keep {
		if e.Name == name {
			return e, true
		}
	}
	return keepEntry{}, false
}

// Places the supply chest behind the turtle, leaving the turtle facing it.
// With force, obstructions are dug out.
func (c *invCtl) placeChest(force bool) bool {
	slot, ok := c.findChest()
	if !ok {
		return false
	}
	c.api.selectSlot(slot)
	// Raw turns; placeChest and refreshInventory always turn back, so the
	// movement controller's heading stays valid.
	c.api.turnLeft()
	c.api.turnLeft()
	placed := c.api.place(sideFront)
	for digs := 0; !placed && force; digs++ {
		if (c.forceLimit > 0 && digs >= c.forceLimit) || linkLost(c.api) {
			break
		}
		c.api.dig(sideFront)
		placed = c.api.place(sideFront)
	}
	if !placed {
		c.log.Printf("inventory: warning: failed to place supply chest")
		c.api.turnLeft()
		c.api.turnLeft()
		return false
	}
	return true
}

// Merges partial stacks of the same item into the lowest slot.
func (c *invCtl) sortInventory() {
	for slot := 1; slot <= turtleSlots; slot++ {
		for other := slot + 1; other <= turtleSlots; other++ {
			item, ok := c.api.getItemDetail(slot)
			if !ok || (item.MaxCount > 0 && item.Count >= item.MaxCount) {
				break
			}
			other_item, ok := c.api.getItemDetail(other)
			if !ok || other_item.Name != item.Name || other_item.NBT != item.NBT {
				continue
			}
			c.api.selectSlot(other)
			c.api.transferTo(slot, other_item.Count)
		}
	}
}

// Pulls supplies from the chest in front. The chest may need a moment
// after placement before it can be wrapped. Returns true if every quota
// was met.
func (c *invCtl) resupplyInventory(timeout time.Duration) bool {
	stop := c.now().Add(timeout)
	var chest chestAPI
	for {
		var ok bool
		chest, ok = c.api.wrapChest(sideFront)
		if ok {
			break
		}
		if !c.now().Before(stop) {
			c.log.Printf("inventory: warning: failed to wrap the supply chest")
			return false
		}
		c.sleep(50 * time.Millisecond)
	}
	items := chest.list()
	chest_slots := make([]int, 0, len(items))
	for slot := range items {
		chest_slots = append(chest_slots, slot)
	}
	sort.Ints(chest_slots)

	quota_met := true
	for _, s := range c.supply {
		quota := s.Count - countItem(c.api, s.Name)
		if quota < 0 {
			quota = 0
		}
		missing := quota
		for _, slot := range chest_slots {
			if missing <= 0 {
				break
			}
			item := items[slot]
			if item.Name != s.Name {
				continue
			}
			n := missing
			if item.Count < n {
				n = item.Count
			}
			missing -= c.pullFromChestSlot(chest, slot, n)
		}
		if missing > 0 {
			quota_met = false
		}
		if quota > 0 {
			c.log.Printf("inventory: resupplied %d %v", quota-missing, s.Name)
			emit(c.events, mineEvent{Kind: evResupply, Name: s.Name, Count: quota - missing})
		}
	}
	return quota_met
}

// Sucks up to n items out of one chest slot into the turtle. suck only
// takes from the first occupied slot, so the wanted stack is swapped into
// slot 1 and the chest layout is restored afterwards. Returns the number of
// items that arrived.
func (c *invCtl) pullFromChestSlot(chest chestAPI, slot, n int) int {
	want, ok := chest.getItemDetail(slot)
	if !ok || n <= 0 {
		return 0
	}
	if n > want.Count {
		n = want.Count
	}
	before := countItem(c.api, want.Name)
	first, occupied := chest.getItemDetail(1)
	if slot == 1 || (occupied && first.Name == want.Name && first.NBT == want.NBT) {
		c.api.suck(sideFront, n)
		return countItem(c.api, want.Name) - before
	}

	// Park the slot 1 stack in a free chest slot, or in the turtle when the
	// chest is full.
	parked := 0
	in_turtle := false
	if occupied {
		parked = freeChestSlot(chest)
		if parked == 0 {
			if !c.api.suck(sideFront, first.Count) {
				c.log.Printf("inventory: warning: cannot make room in the supply chest")
				return 0
			}
			in_turtle = true
		} else if chest.moveItems(1, first.Count, parked) < first.Count {
			c.log.Printf("inventory: warning: failed to park chest slot 1")
			return 0
		}
	}

	moved := chest.moveItems(slot, n, 1)
	if moved > 0 {
		c.api.suck(sideFront, moved)
	}
	got := countItem(c.api, want.Name) - before

	// Put everything back where it was.
	if rest, ok := chest.getItemDetail(1); ok {
		chest.moveItems(1, rest.Count, slot)
	}
	switch {
	case in_turtle:
		back, ok := findFirstItem(c.api, func(item itemDetail) bool {
			return item.Name == first.Name && item.NBT == first.NBT
		})
		if ok {
			c.api.selectSlot(back.slot)
			c.api.drop(sideFront, first.Count)
		}
	case parked != 0:
		chest.moveItems(parked, first.Count, 1)
	}
	return got
}

func freeChestSlot(chest chestAPI) int {
	items := chest.list()
	for slot := 1; slot <= chest.size(); slot++ {
		if _, ok := items[slot]; !ok {
			return slot
		}
	}
	return 0
}

// Drops everything that is not kept, plus the overflow of kept items, into
// whatever is in front.
func (c *invCtl) clearInventory() {
	forSlot(c.api, func(slot int, item itemDetail, ok bool) bool {
		if !ok {
			return false
		}
		entry, keep := c.keepEntryFor(item.Name)
		drop := 0
		switch {
		case !keep:
			drop = item.Count
		case entry.MaxCount > 0 && item.Count > entry.MaxCount:
			drop = item.Count - entry.MaxCount
		}
		if drop > 0 {
			c.api.selectSlot(slot)
			if !c.api.drop(sideFront, drop) {
				c.log.Printf("inventory: warning: failed to drop %d %v", drop, item.Name)
			}
		}
		return false
	})
}

// Places the supply chest, unloads into it, resupplies from it and picks it
// back up.
func (c *invCtl) refreshInventory() bool {
	if !c.placeChest(true) {
		return false
	}
	c.clearInventory()
	if !c.resupplyInventory(c.chestTimeout) {
		c.log.Printf("inventory: warning: resupply quota not met")
	}
	c.sortInventory()
	// Take the chest back and face the original way.
	c.api.dig(sideFront)
	c.api.turnLeft()
	c.api.turnLeft()
	return true
}

func (c *invCtl) isInventoryFull() bool {
	full := true
	forSlot(c.api, func(_ int, _ itemDetail, ok bool) bool {
		if !ok {
			full = false
		}
		return !full
	})
	return full
}
