package main

type moveAction int

const (
	moveForward = moveAction(iota)
	moveBack
	moveUp
	moveDown
	moveTurnLeft
	moveTurnRight
)

func (a moveAction) String() string {
	switch a {
	case moveForward:
		return "FORWARD"
	case moveBack:
		return "BACK"
	case moveUp:
		return "UP"
	case moveDown:
		return "DOWN"
	case moveTurnLeft:
		return "TURN_LEFT"
	case moveTurnRight:
		return "TURN_RIGHT"
	default:
		return "INVALID"
	}
}

// Returns the action that undoes a.
func (a moveAction) inverse() moveAction {
	switch a {
	case moveForward:
		return moveBack
	case moveBack:
		return moveForward
	case moveUp:
		return moveDown
	case moveDown:
		return moveUp
	case moveTurnLeft:
		return moveTurnRight
	default:
		return moveTurnLeft
	}
}

// Stack of executed move actions.
type moveHistory struct {
	actions []moveAction
}

func (h *moveHistory) len() int {
	return len(h.actions)
}

func (h *moveHistory) clear() {
	h.actions = h.actions[:0]
}

func (h *moveHistory) push(a moveAction) {
	h.actions = append(h.actions, a)
}

// Removes the last action. ok is false when the history is empty.
func (h *moveHistory) pop() (a moveAction, ok bool) {
	n := len(h.actions)
	if n == 0 {
		return 0, false
	}
	a = h.actions[n-1]
	h.actions = h.actions[:n-1]
	return a, true
}

// Removes the last action and returns the action that reverses it.
func (h *moveHistory) popReverse() (moveAction, bool) {
	a, ok := h.pop()
	if !ok {
		return 0, false
	}
	return a.inverse(), true
}

// Copy of the recorded actions, oldest first.
func (h *moveHistory) list() []moveAction {
	out := make([]moveAction, len(h.actions))
	copy(out, h.actions)
	return out
}
