package main

import (
	"fmt"
)

const (
	simStackSize  = 64
	simChestSlots = 27
	digErrNothing = "Nothing to dig here"
)

// Fuel points per item.
var simFuelValues = map[string]int{
	"minecraft:coal":       80,
	"minecraft:charcoal":   80,
	"minecraft:coal_block": 800,
}

// Ores scattered by the world generator.
var simOres = []string{
	"minecraft:coal_ore",
	"minecraft:iron_ore",
	"minecraft:gold_ore",
	"minecraft:diamond_ore",
	"minecraft:redstone_ore",
	"minecraft:lapis_ore",
}

// simInventory is a fixed number of slots, numbered from 1.
type simInventory struct {
	slots []itemDetail
}

func newSimInventory(n int) *simInventory {
	return &simInventory{slots: make([]itemDetail, n)}
}

func (inv *simInventory) size() int {
	return len(inv.slots)
}

func (inv *simInventory) get(slot int) (itemDetail, bool) {
	if slot < 1 || slot > len(inv.slots) || inv.slots[slot-1].Count <= 0 {
		return itemDetail{}, false
	}
	return inv.slots[slot-1], true
}

func (inv *simInventory) room(slot int, item itemDetail) int {
	cur := inv.slots[slot-1]
	if cur.Count == 0 {
		return simStackSize
	}
	if cur.Name != item.Name || cur.NBT != item.NBT {
		return 0
	}
	return cur.MaxCount - cur.Count
}

// Adds up to item.Count items into slot, or anywhere when slot is 0.
// Existing stacks are topped up before empty slots are used. Returns the
// number of items stored.
func (inv *simInventory) insert(item itemDetail, slot int) int {
	if item.Count <= 0 {
		return 0
	}
	if slot < 0 || slot > len(inv.slots) {
		return 0
	}
	candidates := []int{slot}
	if slot == 0 {
		candidates = candidates[:0]
		for s := 1; s <= len(inv.slots); s++ {
			if inv.slots[s-1].Count > 0 {
				candidates = append(candidates, s)
			}
		}
		for s := 1; s <= len(inv.slots); s++ {
			if inv.slots[s-1].Count == 0 {
				candidates = append(candidates, s)
			}
		}
	}
	left := item.Count
	for _, s := range candidates {
		n := inv.room(s, item)
		if n > left {
			n = left
		}
		if n <= 0 {
			continue
		}
		cur := &inv.slots[s-1]
		if cur.Count == 0 {
			*cur = itemDetail{Name: item.Name, NBT: item.NBT, MaxCount: simStackSize, Tags: item.Tags}
		}
		cur.Count += n
		left -= n
		if left == 0 {
			break
		}
	}
	return item.Count - left
}

// Removes up to n items from slot.
func (inv *simInventory) take(slot, n int) itemDetail {
	cur, ok := inv.get(slot)
	if !ok || n <= 0 {
		return itemDetail{}
	}
	if n > cur.Count {
		n = cur.Count
	}
	out := cur
	out.Count = n
	inv.slots[slot-1].Count -= n
	if inv.slots[slot-1].Count == 0 {
		inv.slots[slot-1] = itemDetail{}
	}
	return out
}

func (inv *simInventory) list() map[int]itemDetail {
	out := map[int]itemDetail{}
	for i, item := range inv.slots {
		if item.Count > 0 {
			out[i+1] = item
		}
	}
	return out
}

func (inv *simInventory) count(name string) int {
	n := 0
	for _, item := range inv.slots {
		if item.Name == name {
			n += item.Count
		}
	}
	return n
}

// simWorld is a sparse voxel world. Cells never written hold fill.
type simWorld struct {
	blocks      map[vec3]string
	fill        string
	fluids      map[string]bool
	unbreakable map[string]bool
	// Forced dig failure reasons by position.
	digErr map[vec3]string
	// Chest inventories by position. Ender chests share one inventory.
	chests    map[vec3]*simInventory
	chestItem string
	ender     *simInventory
}

func newSimWorld(fill string) *simWorld {
	return &simWorld{
		blocks: map[vec3]string{},
		fill:   fill,
		fluids: map[string]bool{
			"minecraft:water": true,
			"minecraft:lava":  true,
		},
		unbreakable: map[string]bool{
			"minecraft:bedrock": true,
		},
		digErr:    map[vec3]string{},
		chests:    map[vec3]*simInventory{},
		chestItem: "enderchests:ender_chest",
		ender:     newSimInventory(simChestSlots),
	}
}

func (w *simWorld) block(pos vec3) string {
	name, ok := w.blocks[pos]
	if !ok {
		return w.fill
	}
	return name
}

func (w *simWorld) set(pos vec3, name string) {
	w.blocks[pos] = name
}

// True for air and fluids.
func (w *simWorld) passable(pos vec3) bool {
	name := w.block(pos)
	return name == "" || w.fluids[name]
}

// Sets every cell between from and to (inclusive) to air.
func (w *simWorld) clearBox(from, to vec3) {
	for x := from[0]; x <= to[0]; x++ {
		for y := from[1]; y <= to[1]; y++ {
			for z := from[2]; z <= to[2]; z++ {
				w.set(vec3{x, y, z}, "")
			}
		}
	}
}

// simRNG is a small deterministic LCG, so a seed always yields the same world.
type simRNG struct {
	state int64
}

func newSimRNG(seed int64) *simRNG {
	return &simRNG{state: seed ^ 0x5deece66d}
}

func (r *simRNG) next() int64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

func (r *simRNG) nextN(n int) int {
	v := int(r.next()>>33) % n
	if v < 0 {
		v = -v
	}
	return v
}

// Scatters ore veins, some bedrock and a few fluid pockets in the stone
// around the origin. Veins are random walks, so they are connected.
func (w *simWorld) generate(cfg simConfig) {
	rng := newSimRNG(cfg.Seed)
	span := 2*cfg.Radius + 1
	randPos := func() vec3 {
		return vec3{
			rng.nextN(span) - cfg.Radius,
			rng.nextN(9) - 4,
			rng.nextN(span) - cfg.Radius,
		}
	}
	walk := func(pos vec3, size int, name string) {
		for i := 0; i < size; i++ {
			if !vec3Equal(pos, vec3Zero) && w.block(pos) == w.fill {
				w.set(pos, name)
			}
			switch rng.nextN(6) {
			case 0:
				pos[0]++
			case 1:
				pos[0]--
			case 2:
				pos[1]++
			case 3:
				pos[1]--
			case 4:
				pos[2]++
			case 5:
				pos[2]--
			}
		}
	}
	for i := 0; i < cfg.Veins; i++ {
		ore := simOres[rng.nextN(len(simOres))]
		walk(randPos(), 1+rng.nextN(cfg.VeinSize), ore)
	}
	for i := 0; i < cfg.Veins/10; i++ {
		walk(randPos(), 3, "minecraft:bedrock")
	}
	for i := 0; i < cfg.Veins/20; i++ {
		walk(randPos(), 2, "minecraft:water")
	}
}

// simTurtle is an in-memory turtle in a simWorld. It starts at the origin
// facing +z, the same frame moveCtl tracks. Every primitive call is counted
// in calls under its ComputerCraft name ("digUp", "turnLeft", ...).
type simTurtle struct {
	world    *simWorld
	pos      vec3
	dir      vec3
	fuel     int
	inv      *simInventory
	selected int
	calls    map[string]int
	// Failed wrap attempts left before a placed chest can be wrapped.
	wrapDelay int
}

func newSimTurtle(world *simWorld, fuel int) *simTurtle {
	return &simTurtle{
		world:    world,
		pos:      vec3Zero,
		dir:      vec3Forward,
		fuel:     fuel,
		inv:      newSimInventory(turtleSlots),
		selected: 1,
		calls:    map[string]int{},
	}
}

// Puts count items into the first free slots.
func (t *simTurtle) give(name string, count int) int {
	return t.inv.insert(itemDetail{Name: name, Count: count}, 0)
}

// Puts count items into a given slot.
func (t *simTurtle) giveSlot(slot int, name string, count int) int {
	return t.inv.insert(itemDetail{Name: name, Count: count}, slot)
}

func (t *simTurtle) call(op string, s side) {
	switch s {
	case sideUp:
		op += "Up"
	case sideDown:
		op += "Down"
	}
	t.calls[op]++
}

func (t *simTurtle) target(s side) vec3 {
	switch s {
	case sideUp:
		return vec3Add(t.pos, vec3Up)
	case sideDown:
		return vec3Add(t.pos, vec3Down)
	}
	return vec3Add(t.pos, t.dir)
}

func (t *simTurtle) detect(s side) bool {
	t.call("detect", s)
	return !t.world.passable(t.target(s))
}

func (t *simTurtle) inspect(s side) (blockInfo, bool) {
	t.call("inspect", s)
	name := t.world.block(t.target(s))
	if name == "" {
		return blockInfo{}, false
	}
	return blockInfo{Name: name, State: map[string]any{}, Tags: map[string]bool{}}, true
}

func (t *simTurtle) dig(s side) (bool, string) {
	t.call("dig", s)
	pos := t.target(s)
	if reason, ok := t.world.digErr[pos]; ok {
		return false, reason
	}
	name := t.world.block(pos)
	if name == "" || t.world.fluids[name] {
		return false, digErrNothing
	}
	if t.world.unbreakable[name] {
		return false, digErrUnbreakable
	}
	t.world.set(pos, "")
	delete(t.world.chests, pos)
	// Items that do not fit are lost, like an entity nobody picks up.
	t.inv.insert(itemDetail{Name: name, Count: 1}, 0)
	return true, ""
}

func (t *simTurtle) place(s side) bool {
	t.call("place", s)
	pos := t.target(s)
	item, ok := t.inv.get(t.selected)
	if !ok || !t.world.passable(pos) {
		return false
	}
	t.inv.take(t.selected, 1)
	t.world.set(pos, item.Name)
	if item.Name == t.world.chestItem {
		t.world.chests[pos] = t.world.ender
	}
	return true
}

func (t *simTurtle) drop(s side, count int) bool {
	t.call("drop", s)
	item, ok := t.inv.get(t.selected)
	if !ok {
		return false
	}
	if count > item.Count {
		count = item.Count
	}
	if chest := t.world.chests[t.target(s)]; chest != nil {
		item.Count = count
		n := chest.insert(item, 0)
		t.inv.take(t.selected, n)
		return n > 0
	}
	t.inv.take(t.selected, count)
	return true
}

func (t *simTurtle) suck(s side, count int) bool {
	t.call("suck", s)
	chest := t.world.chests[t.target(s)]
	if chest == nil {
		return false
	}
	for slot := 1; slot <= chest.size(); slot++ {
		item, ok := chest.get(slot)
		if !ok {
			continue
		}
		if count < item.Count {
			item.Count = count
		}
		n := t.inv.insert(item, 0)
		chest.take(slot, n)
		return n > 0
	}
	return false
}

func (t *simTurtle) move(op string, delta vec3) bool {
	t.calls[op]++
	if t.fuel <= 0 {
		return false
	}
	next := vec3Add(t.pos, delta)
	if !t.world.passable(next) {
		return false
	}
	t.pos = next
	t.fuel--
	return true
}

func (t *simTurtle) forward() bool { return t.move("forward", t.dir) }
func (t *simTurtle) back() bool    { return t.move("back", vec3Neg(t.dir)) }
func (t *simTurtle) up() bool      { return t.move("up", vec3Up) }
func (t *simTurtle) down() bool    { return t.move("down", vec3Down) }

func (t *simTurtle) turnLeft() bool {
	t.calls["turnLeft"]++
	t.dir = rotateDir(t.dir, rotLeft)
	return true
}

func (t *simTurtle) turnRight() bool {
	t.calls["turnRight"]++
	t.dir = rotateDir(t.dir, rotRight)
	return true
}

func (t *simTurtle) getItemDetail(slot int) (itemDetail, bool) {
	t.calls["getItemDetail"]++
	return t.inv.get(slot)
}

func (t *simTurtle) selectSlot(slot int) bool {
	t.calls["select"]++
	if slot < 1 || slot > turtleSlots {
		return false
	}
	t.selected = slot
	return true
}

func (t *simTurtle) transferTo(slot int, count int) bool {
	t.calls["transferTo"]++
	item, ok := t.inv.get(t.selected)
	if !ok || slot == t.selected {
		return false
	}
	if count < item.Count {
		item.Count = count
	}
	n := t.inv.insert(item, slot)
	t.inv.take(t.selected, n)
	return n > 0
}

func (t *simTurtle) getFuelLevel() int {
	t.calls["getFuelLevel"]++
	return t.fuel
}

func (t *simTurtle) refuel(count int) bool {
	t.calls["refuel"]++
	item, ok := t.inv.get(t.selected)
	if !ok {
		return false
	}
	value, ok := simFuelValues[item.Name]
	if !ok {
		return false
	}
	used := t.inv.take(t.selected, count)
	t.fuel += used.Count * value
	return true
}

func (t *simTurtle) wrapChest(s side) (chestAPI, bool) {
	t.call("wrap", s)
	inv := t.world.chests[t.target(s)]
	if inv == nil {
		return nil, false
	}
	if t.wrapDelay > 0 {
		t.wrapDelay--
		return nil, false
	}
	return simChest{inv: inv}, true
}

func (t *simTurtle) String() string {
	return fmt.Sprintf("sim turtle at %v facing %v, fuel %d", t.pos, t.dir, t.fuel)
}

// A wrapped chest next to a simTurtle.
type simChest struct {
	inv *simInventory
}

func (c simChest) size() int {
	return c.inv.size()
}

func (c simChest) list() map[int]itemDetail {
	return c.inv.list()
}

func (c simChest) getItemDetail(slot int) (itemDetail, bool) {
	return c.inv.get(slot)
}

func (c simChest) moveItems(fromSlot, limit, toSlot int) int {
	item, ok := c.inv.get(fromSlot)
	if !ok || fromSlot == toSlot || toSlot < 1 || toSlot > c.inv.size() {
		return 0
	}
	if limit < item.Count {
		item.Count = limit
	}
	n := c.inv.insert(item, toSlot)
	c.inv.take(fromSlot, n)
	return n
}
