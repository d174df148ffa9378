package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/net/websocket"
)

// remoteTurtle drives a real turtle through the kernel's websocket. Every
// primitive is one blocking round trip. Once the link breaks every call
// reports failure and linkErr says why.
type remoteTurtle struct {
	ws      *websocket.Conn
	label   turtleID
	timeout time.Duration
	seq     int64
	err     error
}

func newRemoteTurtle(ws *websocket.Conn, label turtleID, timeout time.Duration) *remoteTurtle {
	return &remoteTurtle{ws: ws, label: label, timeout: timeout}
}

func (r *remoteTurtle) linkErr() error {
	return r.err
}

func (r *remoteTurtle) next() int64 {
	r.seq++
	return r.seq
}

// Sends one call and waits for its reply.
func (r *remoteTurtle) call(c rpcCall) (rpcReply, error) {
	if r.err != nil {
		return rpcReply{}, r.err
	}
	fail := func(err error) (rpcReply, error) {
		r.err = fmt.Errorf("turtle %v: %v: %w", r.label, c.Op, err)
		log.Printf("remote: error: %v", r.err)
		return rpcReply{}, r.err
	}
	if r.timeout > 0 {
		if err := r.ws.SetDeadline(time.Now().Add(r.timeout)); err != nil {
			return fail(err)
		}
	}
	if err := websocket.JSON.Send(r.ws, c); err != nil {
		return fail(err)
	}
	var raw []byte
	if err := websocket.Message.Receive(r.ws, &raw); err != nil {
		return fail(err)
	}
	rsp, err := parseReply(raw)
	if err != nil {
		return fail(err)
	}
	if rsp.ID != c.ID {
		return fail(fmt.Errorf("reply id %d, expected %d", rsp.ID, c.ID))
	}
	return rsp, nil
}

// Like call, but a Lua error in the kernel is only logged. ok is false for
// link and Lua errors alike.
func (r *remoteTurtle) invoke(c rpcCall) (rpcReply, bool) {
	rsp, err := r.call(c)
	if err != nil {
		return rsp, false
	}
	if !rsp.OK {
		log.Printf("remote: warning: turtle %v: %v failed: %v", r.label, c.Op, rsp.Err)
		return rsp, false
	}
	return rsp, true
}

func (r *remoteTurtle) boolRet(c rpcCall) bool {
	rsp, ok := r.invoke(c)
	if !ok {
		return false
	}
	var b bool
	rsp.value(0, &b)
	return b
}

func (r *remoteTurtle) detect(s side) bool {
	return r.boolRet(makeCallSide(r.next(), "detect", s))
}

func (r *remoteTurtle) inspect(s side) (blockInfo, bool) {
	rsp, ok := r.invoke(makeCallSide(r.next(), "inspect", s))
	if !ok {
		return blockInfo{}, false
	}
	var found bool
	var info blockInfo
	if !rsp.value(0, &found) || !found || !rsp.value(1, &info) {
		return blockInfo{}, false
	}
	return info, true
}

func (r *remoteTurtle) dig(s side) (bool, string) {
	rsp, ok := r.invoke(makeCallSide(r.next(), "dig", s))
	if !ok {
		if r.err != nil {
			return false, r.err.Error()
		}
		return false, rsp.Err
	}
	var dug bool
	var reason string
	rsp.value(0, &dug)
	if !dug {
		rsp.value(1, &reason)
	}
	return dug, reason
}

func (r *remoteTurtle) place(s side) bool {
	return r.boolRet(makeCallSide(r.next(), "place", s))
}

func (r *remoteTurtle) drop(s side, count int) bool {
	return r.boolRet(makeCallSide(r.next(), "drop", s, count))
}

func (r *remoteTurtle) suck(s side, count int) bool {
	return r.boolRet(makeCallSide(r.next(), "suck", s, count))
}

func (r *remoteTurtle) forward() bool   { return r.boolRet(makeCall(r.next(), "forward")) }
func (r *remoteTurtle) back() bool      { return r.boolRet(makeCall(r.next(), "back")) }
func (r *remoteTurtle) up() bool        { return r.boolRet(makeCall(r.next(), "up")) }
func (r *remoteTurtle) down() bool      { return r.boolRet(makeCall(r.next(), "down")) }
func (r *remoteTurtle) turnLeft() bool  { return r.boolRet(makeCall(r.next(), "turnLeft")) }
func (r *remoteTurtle) turnRight() bool { return r.boolRet(makeCall(r.next(), "turnRight")) }

func (r *remoteTurtle) getItemDetail(slot int) (itemDetail, bool) {
	rsp, ok := r.invoke(makeCall(r.next(), "getItemDetail", slot, true))
	if !ok {
		return itemDetail{}, false
	}
	var item itemDetail
	if !rsp.value(0, &item) || item.Count <= 0 {
		return itemDetail{}, false
	}
	return item, true
}

func (r *remoteTurtle) selectSlot(slot int) bool {
	return r.boolRet(makeCall(r.next(), "select", slot))
}

func (r *remoteTurtle) transferTo(slot int, count int) bool {
	return r.boolRet(makeCall(r.next(), "transferTo", slot, count))
}

// Turtles with fuel disabled report "unlimited".
func (r *remoteTurtle) getFuelLevel() int {
	rsp, ok := r.invoke(makeCall(r.next(), "getFuelLevel"))
	if !ok {
		return 0
	}
	var level int
	if rsp.value(0, &level) {
		return level
	}
	var s string
	if rsp.value(0, &s) && s == "unlimited" {
		return math.MaxInt32
	}
	return 0
}

func (r *remoteTurtle) refuel(count int) bool {
	return r.boolRet(makeCall(r.next(), "refuel", count))
}

func (r *remoteTurtle) wrapChest(s side) (chestAPI, bool) {
	if !r.boolRet(makeCallChest(r.next(), "wrap", s)) {
		return nil, false
	}
	return remoteChest{turtle: r, side: s}, true
}

// An inventory peripheral next to a remote turtle.
type remoteChest struct {
	turtle *remoteTurtle
	side   side
}

type chestSlot struct {
	Slot int `json:"slot"`
	itemDetail
}

func (c remoteChest) size() int {
	rsp, ok := c.turtle.invoke(makeCallChest(c.turtle.next(), "size", c.side))
	if !ok {
		return 0
	}
	var n int
	rsp.value(0, &n)
	return n
}

// The kernel flattens the sparse slot table into a list of slots.
func (c remoteChest) list() map[int]itemDetail {
	out := map[int]itemDetail{}
	rsp, ok := c.turtle.invoke(makeCallChest(c.turtle.next(), "list", c.side))
	if !ok {
		return out
	}
	var raw json.RawMessage
	if !rsp.value(0, &raw) || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return out
	}
	var slots []chestSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		log.Printf("remote: warning: turtle %v: bad chest list: %v", c.turtle.label, err)
		return out
	}
	for _, s := range slots {
		if s.Count > 0 {
			out[s.Slot] = s.itemDetail
		}
	}
	return out
}

func (c remoteChest) getItemDetail(slot int) (itemDetail, bool) {
	rsp, ok := c.turtle.invoke(makeCallChest(c.turtle.next(), "getItemDetail", c.side, slot))
	if !ok {
		return itemDetail{}, false
	}
	var item itemDetail
	if !rsp.value(0, &item) || item.Count <= 0 {
		return itemDetail{}, false
	}
	return item, true
}

func (c remoteChest) moveItems(fromSlot, limit, toSlot int) int {
	rsp, ok := c.turtle.invoke(makeCallChest(c.turtle.next(), "moveItems", c.side, fromSlot, limit, toSlot))
	if !ok {
		return 0
	}
	var n int
	rsp.value(0, &n)
	return n
}
