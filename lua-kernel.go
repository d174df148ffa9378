package main

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Replaced with the public server URL (base URL + key) when served.
const kernelBaseURLMark = "{{base_url}}"

type kernel struct {
	src     string
	version int
}

// Fills in the server URL and runs the kernel once server side to check it
// and to read its version.
func loadKernel(baseURL string) (kernel, error) {
	src := strings.ReplaceAll(lua_src_kernel, kernelBaseURLMark, baseURL)
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString("is_server = true"); err != nil {
		return kernel{}, err
	}
	if err := L.DoString(src); err != nil {
		return kernel{}, fmt.Errorf("kernel: %w", err)
	}
	version := int(lua.LVAsNumber(L.GetGlobal("version")))
	if version < 1 {
		return kernel{}, fmt.Errorf("kernel: failed to get global 'version'")
	}
	if L.GetGlobal("handle_call").Type() != lua.LTFunction {
		return kernel{}, fmt.Errorf("kernel: missing handle_call")
	}
	return kernel{src: src, version: version}, nil
}

var lua_src_kernel = `
version = 31

local base_url = "` + kernelBaseURLMark + `"

local unpack = table.unpack or unpack

-- Debugging.
function fmt(x)
    if x == nil then
        return "null"
    elseif type(x) == "string" then
        return x
    end
    if textutils ~= nil then
        return textutils.serializeJSON(x)
    end
    return tostring(x)
end

function debug(x)
    print(fmt(x))
end

-- Turtle functions the server may call.
local turtle_ops = {
    detect = true, detectUp = true, detectDown = true,
    inspect = true, inspectUp = true, inspectDown = true,
    dig = true, digUp = true, digDown = true,
    place = true, placeUp = true, placeDown = true,
    drop = true, dropUp = true, dropDown = true,
    suck = true, suckUp = true, suckDown = true,
    forward = true, back = true, up = true, down = true,
    turnLeft = true, turnRight = true,
    getItemDetail = true, select = true, transferTo = true,
    getFuelLevel = true, refuel = true,
}

-- Inventory peripheral functions, called with the wrapped peripheral.
local chest_ops = {
    wrap = function(p)
        return p ~= nil and p.list ~= nil
    end,
    size = function(p)
        return p.size()
    end,
    list = function(p)
        -- Sparse slot tables do not survive JSON, flatten them.
        local out = {}
        for slot, item in pairs(p.list()) do
            local detail = p.getItemDetail(slot) or item
            detail.slot = slot
            table.insert(out, detail)
        end
        return out
    end,
    getItemDetail = function(p, slot)
        return p.getItemDetail(slot)
    end,
    moveItems = function(p, from_slot, limit, to_slot)
        return p.pushItems(peripheral.getName(p), from_slot, limit, to_slot)
    end,
}

-- Executes one call table {id, op, args} and returns the reply table
-- {id, ok, err, ret}.
function handle_call(call)
    local args = call.args or {}
    local fn
    if string.sub(call.op, 1, 6) == "chest." then
        local name = string.sub(call.op, 7)
        local chest_fn = chest_ops[name]
        if chest_fn == nil then
            return {id = call.id, ok = false, err = "unknown op: " .. call.op}
        end
        local p = peripheral.wrap(args[1])
        if p == nil and name ~= "wrap" then
            return {id = call.id, ok = false, err = "no peripheral: " .. fmt(args[1])}
        end
        local rest = {}
        for i = 2, #args do
            rest[i - 1] = args[i]
        end
        args = rest
        fn = function(...)
            return chest_fn(p, ...)
        end
    else
        if not turtle_ops[call.op] then
            return {id = call.id, ok = false, err = "unknown op: " .. call.op}
        end
        fn = turtle[call.op]
    end
    local ret = {pcall(fn, unpack(args))}
    if not ret[1] then
        return {id = call.id, ok = false, err = fmt(ret[2])}
    end
    table.remove(ret, 1)
    return {id = call.id, ok = true, ret = ret}
end

function upgradeKernel()
    debug("checking for kernel upgrade")
    local h = http.get(base_url .. "/version")
    if h == nil then
        debug("upgrade: failed+skipped, no response")
        return false
    end
    local rcode = h.getResponseCode()
    if rcode ~= 200 then
        debug("upgrade: failed+skipped, bad status code [" .. fmt(rcode) .. "]")
        h.close()
        return false
    end
    local new_version = tonumber(h.readAll())
    h.close()
    debug("upgrade: current version [" .. fmt(version) .. "], new version: [" .. fmt(new_version) .. "]")
    if new_version == nil or new_version <= version then
        return false
    end
    debug("upgrade: downloading new version")
    h = http.get(base_url .. "/kernel")
    if h == nil or h.getResponseCode() ~= 200 then
        debug("upgrade: failed+skipped, kernel download failed")
        if h ~= nil then
            h.close()
        end
        return false
    end
    local new_kernel = h.readAll()
    h.close()
    debug("upgrade: flashing new version")
    local path = "/startup"
    local tmp_path = path .. ".tmp"
    local f = fs.open(tmp_path, "w")
    f.write(new_kernel)
    f.close()
    fs.delete(path)
    fs.move(tmp_path, path)
    debug("upgrade: booting new version now")
    os.sleep(1)
    os.reboot()
end

-- Serves calls until the server goes away.
function serve(ws)
    while true do
        local msg = ws.receive()
        if msg == nil then
            debug("link: closed by server")
            return
        end
        local call = textutils.unserializeJSON(msg)
        local rsp
        if type(call) ~= "table" or type(call.op) ~= "string" then
            rsp = {id = 0, ok = false, err = "bad call: " .. fmt(msg)}
        else
            rsp = handle_call(call)
        end
        ws.send(textutils.serializeJSON(rsp))
    end
end

(function()
    if is_server then
        debug("kernel: server run complete")
        return
    end

    -- Upgrade kernel automatically if required.
    upgradeKernel()

    local label = os.getComputerLabel() or ("turtle-" .. os.getComputerID())
    local ws_url = string.gsub(base_url, "^http", "ws") .. "/turtle?label=" .. textutils.urlEncode(label)
    while true do
        debug("link: connecting to " .. ws_url)
        local ws, err = http.websocket(ws_url)
        if not ws then
            debug("link: connect failed: " .. fmt(err))
        else
            pcall(serve, ws)
            pcall(ws.close)
        end
        sleep(5)
    end
end)()
`
