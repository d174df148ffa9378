package main

import (
	"log"
)

// A blockDir is a direction relative to the turtle's current pose.
type blockDir int

const (
	dirFront = blockDir(iota)
	dirTop
	dirBottom
	dirRear
	dirLeft
	dirRight
)

// All relative directions in search order. The vein miner follows the first
// matching direction in this order.
var allBlockDirs = [...]blockDir{dirFront, dirTop, dirBottom, dirRear, dirLeft, dirRight}

func (d blockDir) String() string {
	switch d {
	case dirFront:
		return "FRONT"
	case dirTop:
		return "TOP"
	case dirBottom:
		return "BOTTOM"
	case dirRear:
		return "REAR"
	case dirLeft:
		return "LEFT"
	case dirRight:
		return "RIGHT"
	default:
		return "INVALID"
	}
}

// Anything that can top up fuel before a move.
type fueler interface {
	ensureFuel()
}

// moveCtl is the only mutator of position and direction and the only
// caller of the movement primitives.
type moveCtl struct {
	api  turtleAPI
	fuel fueler
	log  *log.Logger
	pos  vec3
	dir  vec3
	// Digs attempted per forced step before giving up. 0 = unlimited.
	forceLimit   int
	history      moveHistory
	trackHistory bool
}

func newMoveCtl(api turtleAPI, fuel fueler, forceLimit int, lg *log.Logger) *moveCtl {
	return &moveCtl{
		api:        api,
		fuel:       fuel,
		log:        lg,
		pos:        vec3Zero,
		dir:        vec3Forward,
		forceLimit: forceLimit,
	}
}

func (m *moveCtl) position() vec3 {
	return m.pos
}

func (m *moveCtl) direction() vec3 {
	return m.dir
}

func (m *moveCtl) historyLen() int {
	return m.history.len()
}

// Tops up fuel and issues a single movement primitive.
func (m *moveCtl) stepFueled(a moveAction) bool {
	if m.fuel != nil {
		m.fuel.ensureFuel()
	}
	switch a {
	case moveForward:
		return m.api.forward()
	case moveBack:
		return m.api.back()
	case moveUp:
		return m.api.up()
	case moveDown:
		return m.api.down()
	}
	return false
}

// Updates position/direction after a successful primitive and records it.
func (m *moveCtl) applied(a moveAction) {
	switch a {
	case moveForward:
		m.pos = vec3Add(m.pos, m.dir)
	case moveBack:
		m.pos = vec3Sub(m.pos, m.dir)
	case moveUp:
		m.pos = vec3Add(m.pos, vec3Up)
	case moveDown:
		m.pos = vec3Add(m.pos, vec3Down)
	case moveTurnLeft:
		m.dir = rotateDir(m.dir, rotLeft)
	case moveTurnRight:
		m.dir = rotateDir(m.dir, rotRight)
	}
	if m.trackHistory {
		m.history.push(a)
	}
}

func (m *moveCtl) steps(a moveAction, n int) bool {
	for i := 0; i < n; i++ {
		if !m.stepFueled(a) {
			return false
		}
		m.applied(a)
	}
	return true
}

func (m *moveCtl) forward(n int) bool { return m.steps(moveForward, n) }
func (m *moveCtl) back(n int) bool    { return m.steps(moveBack, n) }
func (m *moveCtl) up(n int) bool      { return m.steps(moveUp, n) }
func (m *moveCtl) down(n int) bool    { return m.steps(moveDown, n) }

// Moves n steps digging whatever is in the way. a is forward, up or down.
func (m *moveCtl) forceSteps(a moveAction, n int) bool {
	dig_side := sideFront
	switch a {
	case moveUp:
		dig_side = sideUp
	case moveDown:
		dig_side = sideDown
	}
	for i := 0; i < n; i++ {
		digs := 0
		for !m.stepFueled(a) {
			if linkLost(m.api) {
				return false
			}
			if m.forceLimit > 0 && digs >= m.forceLimit {
				m.log.Printf("move: error: forced %v blocked at %v after %d digs, giving up", a, m.pos, digs)
				return false
			}
			m.api.dig(dig_side)
			digs++
		}
		m.applied(a)
	}
	return true
}

func (m *moveCtl) forceForward(n int) bool { return m.forceSteps(moveForward, n) }
func (m *moveCtl) forceUp(n int) bool      { return m.forceSteps(moveUp, n) }
func (m *moveCtl) forceDown(n int) bool    { return m.forceSteps(moveDown, n) }

// There is no dig-backwards primitive. When stepping back fails the turtle
// turns around, forces its way forward and turns back.
func (m *moveCtl) forceBack(n int) bool {
	for i := 0; i < n; i++ {
		if m.stepFueled(moveBack) {
			m.applied(moveBack)
			continue
		}
		record := m.trackHistory
		ok := m.withoutHistory(func() bool {
			m.turnAround(rotLeft)
			moved := m.forceForward(1)
			m.turnAround(rotLeft)
			return moved
		})
		if !ok {
			return false
		}
		if record {
			m.history.push(moveBack)
		}
	}
	return true
}

func (m *moveCtl) turnLeft() bool {
	m.api.turnLeft()
	m.applied(moveTurnLeft)
	return true
}

func (m *moveCtl) turnRight() bool {
	m.api.turnRight()
	m.applied(moveTurnRight)
	return true
}

// Turns 180 degrees. sense is rotLeft or rotRight.
func (m *moveCtl) turnAround(sense int) {
	if sense == rotRight {
		m.turnRight()
		m.turnRight()
		return
	}
	m.turnLeft()
	m.turnLeft()
}

// Turns back to the direction the turtle started in.
func (m *moveCtl) resetToForward() {
	switch {
	case m.dir == vec3Forward:
	case rotateDir(m.dir, rotLeft) == vec3Forward:
		m.turnLeft()
	case rotateDir(m.dir, rotRight) == vec3Forward:
		m.turnRight()
	default:
		m.turnAround(rotLeft)
	}
}

func (m *moveCtl) execute(a moveAction) bool {
	switch a {
	case moveForward:
		return m.forward(1)
	case moveBack:
		return m.back(1)
	case moveUp:
		return m.up(1)
	case moveDown:
		return m.down(1)
	case moveTurnLeft:
		return m.turnLeft()
	case moveTurnRight:
		return m.turnRight()
	}
	return false
}

// Undoes the last recorded action. Falls back to a forced move when the
// plain move is blocked so backtracking always finds its way home.
func (m *moveCtl) reverseMove() bool {
	a, ok := m.history.popReverse()
	if !ok {
		m.log.Printf("move: warning: attempt to reverse empty history")
		return false
	}
	return m.withoutHistory(func() bool {
		if m.execute(a) {
			return true
		}
		m.log.Printf("move: warning: reverse %v blocked at %v, forcing", a, m.pos)
		switch a {
		case moveForward:
			return m.forceForward(1)
		case moveBack:
			return m.forceBack(1)
		case moveUp:
			return m.forceUp(1)
		case moveDown:
			return m.forceDown(1)
		}
		return false
	})
}

// Runs fn with history recording off. The previous mode is restored on
// every exit path.
func (m *moveCtl) withoutHistory(fn func() bool) bool {
	prev := m.trackHistory
	m.trackHistory = false
	defer func() {
		m.trackHistory = prev
	}()
	return fn()
}

// Absolute relative-frame coordinate of the block in direction d.
func (m *moveCtl) blockDirectionToCoordinates(d blockDir) vec3 {
	switch d {
	case dirFront:
		return vec3Add(m.pos, m.dir)
	case dirRear:
		return vec3Sub(m.pos, m.dir)
	case dirTop:
		return vec3Add(m.pos, vec3Up)
	case dirBottom:
		return vec3Add(m.pos, vec3Down)
	case dirLeft:
		return vec3Add(m.pos, rotateDir(m.dir, rotLeft))
	case dirRight:
		return vec3Add(m.pos, rotateDir(m.dir, rotRight))
	}
	return m.pos
}
