package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, kernel, *workMgr, *syncHub) {
	kern, err := loadKernel("http://localhost/k")
	require.NoError(t, err)
	hub := newSyncHub()
	mgr := newWorkMgr(testWorkConfig(), hub, nil, nil)
	srv := httptest.NewServer(newServeMux("/k", kern, mgr, hub))
	t.Cleanup(srv.Close)
	return srv, kern, mgr, hub
}

func httpGet(t *testing.T, url string) string {
	rsp, err := http.Get(url)
	require.NoError(t, err)
	defer rsp.Body.Close()
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	body, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestServeKernel(t *testing.T) {
	srv, kern, _, _ := newTestServer(t)
	assert.Equal(t, strconv.Itoa(kern.version), httpGet(t, srv.URL+"/k/version"))
	assert.Equal(t, kern.src, httpGet(t, srv.URL+"/k/kernel"))
	assert.JSONEq(t, `[]`, httpGet(t, srv.URL+"/k/turtles"))

	rsp, err := http.Get(srv.URL + "/other/version")
	require.NoError(t, err)
	rsp.Body.Close()
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
}

// Answers kernel calls from a sim turtle, like the Lua kernel would.
func simDispatch(sim *simTurtle, c rpcCall) fakeReply {
	arg := func(i int) int {
		if i < len(c.Args) {
			if f, ok := c.Args[i].(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	op, s := c.Op, sideFront
	switch {
	case strings.HasSuffix(op, "Up"):
		op, s = strings.TrimSuffix(op, "Up"), sideUp
	case strings.HasSuffix(op, "Down"):
		op, s = strings.TrimSuffix(op, "Down"), sideDown
	}
	switch op {
	case "detect":
		return okReply(c, sim.detect(s))
	case "inspect":
		info, ok := sim.inspect(s)
		if !ok {
			return okReply(c, false, "No block to inspect")
		}
		return okReply(c, true, info)
	case "dig":
		ok, reason := sim.dig(s)
		if !ok {
			return okReply(c, false, reason)
		}
		return okReply(c, true)
	case "place":
		return okReply(c, sim.place(s))
	case "drop":
		return okReply(c, sim.drop(s, arg(0)))
	case "suck":
		return okReply(c, sim.suck(s, arg(0)))
	case "forward":
		return okReply(c, sim.forward())
	case "back":
		return okReply(c, sim.back())
	case "up":
		return okReply(c, sim.up())
	case "down":
		return okReply(c, sim.down())
	case "turnLeft":
		return okReply(c, sim.turnLeft())
	case "turnRight":
		return okReply(c, sim.turnRight())
	case "getItemDetail":
		item, ok := sim.getItemDetail(arg(0))
		if !ok {
			return okReply(c)
		}
		return okReply(c, item)
	case "select":
		return okReply(c, sim.selectSlot(arg(0)))
	case "transferTo":
		return okReply(c, sim.transferTo(arg(0), arg(1)))
	case "getFuelLevel":
		return okReply(c, sim.getFuelLevel())
	case "refuel":
		return okReply(c, sim.refuel(arg(0)))
	}
	return fakeReply{ID: c.ID, OK: false, Err: "unknown op: " + c.Op}
}

func TestServeTurtleSession(t *testing.T) {
	srv, _, mgr, hub := newTestServer(t)
	_, sim := newSimSession(testWorkConfig())

	ws, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/k/turtle?label=t9", "", srv.URL)
	require.NoError(t, err)
	go func() {
		for {
			var c rpcCall
			if err := websocket.JSON.Receive(ws, &c); err != nil {
				return
			}
			if err := websocket.JSON.Send(ws, simDispatch(sim, c)); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool {
		raw, ok := hub.since(0).docs["turtle/t9"]
		if !ok {
			return false
		}
		var st turtleStatus
		return json.Unmarshal(raw, &st) == nil && st.Iteration >= 1
	}, 30*time.Second, 20*time.Millisecond)
	assert.Contains(t, httpGet(t, srv.URL+"/k/turtles"), `"t9"`)

	ws.Close()
	require.Eventually(t, func() bool {
		return len(mgr.online()) == 0
	}, 10*time.Second, 20*time.Millisecond)
}

func TestServeTurtleNeedsLabel(t *testing.T) {
	srv, _, mgr, _ := newTestServer(t)
	ws, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/k/turtle", "", srv.URL)
	require.NoError(t, err)
	defer ws.Close()
	var c rpcCall
	assert.Error(t, websocket.JSON.Receive(ws, &c), "server hangs up")
	assert.Empty(t, mgr.online())
}

func TestNewSimSession(t *testing.T) {
	cfg := defaultConfig()
	world, sim := newSimSession(cfg)
	assert.Equal(t, "", world.block(vec3Zero))
	assert.Equal(t, 1, sim.inv.count(cfg.Inventory.Chest))
	assert.Equal(t, 64, sim.inv.count(torch))
	assert.Equal(t, 4*64, world.ender.count(coal))
	assert.Zero(t, sim.fuel)

	// Same seed, same world.
	other, _ := newSimSession(cfg)
	assert.Equal(t, world.blocks, other.blocks)
	assert.NotEmpty(t, world.blocks)
}
