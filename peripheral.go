package main

// The turtle peripheral is the boundary of this program. Every world
// interaction goes through turtleAPI; nothing else touches the game.
// Implementations: remoteTurtle (the Lua kernel over a websocket) and
// simTurtle (in-memory world).

// A side is one of the three directions the turtle can act on without
// turning.
type side int

const (
	sideFront side = iota
	sideUp
	sideDown
)

func (s side) String() string {
	switch s {
	case sideUp:
		return "up"
	case sideDown:
		return "down"
	default:
		return "front"
	}
}

// Reason reported by the dig primitive for blocks like bedrock.
const digErrUnbreakable = "Cannot break unbreakable block"

// Inspection data for one block.
type blockInfo struct {
	Name     string          `json:"name"`
	Metadata int             `json:"metadata"`
	State    map[string]any  `json:"state"`
	Tags     map[string]bool `json:"tags"`
}

// Item stack in a turtle or chest slot.
type itemDetail struct {
	Name     string          `json:"name"`
	Count    int             `json:"count"`
	MaxCount int             `json:"maxCount"`
	NBT      string          `json:"nbt"`
	Tags     map[string]bool `json:"tags"`
}

// Number of inventory slots of a turtle. Slots are numbered 1-16.
const turtleSlots = 16

type turtleAPI interface {
	detect(s side) bool
	inspect(s side) (blockInfo, bool)
	// Returns false and a reason when nothing was dug.
	dig(s side) (bool, string)
	place(s side) bool
	drop(s side, count int) bool
	suck(s side, count int) bool

	forward() bool
	back() bool
	up() bool
	down() bool
	turnLeft() bool
	turnRight() bool

	getItemDetail(slot int) (itemDetail, bool)
	selectSlot(slot int) bool
	// Moves up to count items from the selected slot to slot.
	transferTo(slot int, count int) bool
	getFuelLevel() int
	refuel(count int) bool

	// Wraps the inventory on the given side as a peripheral. Freshly placed
	// chests may take a moment before they can be wrapped.
	wrapChest(s side) (chestAPI, bool)
}

// Implemented by peripherals that can lose their connection.
type linkChecker interface {
	linkErr() error
}

// True once a remote peripheral is gone for good. Retry loops stop on it.
func linkLost(api turtleAPI) bool {
	lc, ok := api.(linkChecker)
	return ok && lc.linkErr() != nil
}

// External inventory (chest) wrapped as a peripheral. The turtle only ever
// sucks from the first occupied slot, so specific slots are reached by
// moving stacks around inside the chest.
type chestAPI interface {
	size() int
	list() map[int]itemDetail
	getItemDetail(slot int) (itemDetail, bool)
	// Moves up to limit items from fromSlot to toSlot inside the chest.
	// Returns the number moved.
	moveItems(fromSlot, limit, toSlot int) int
}
