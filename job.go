package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// One primitive call sent to the kernel. Args are positional Lua
// arguments; ops are the turtle API names plus a few "chest." ops.
type rpcCall struct {
	ID   int64  `json:"id"`
	Op   string `json:"op"`
	Args []any  `json:"args"`
}

// The kernel's answer. Ret holds the Lua return values. The kernel encodes
// an empty table as {} rather than [].
type rpcReply struct {
	ID  int64           `json:"id"`
	OK  bool            `json:"ok"`
	Err string          `json:"err"`
	Ret json.RawMessage `json:"ret"`
}

const rpcReplySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "ok"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"ok": {"type": "boolean"},
		"err": {"type": "string"},
		"ret": {"type": ["array", "object"]}
	}
}`

var rpcReplyValidator = jsonschema.MustCompileString("rpc-reply.schema.json", rpcReplySchema)

// Turtle API op name for a side. Mirrors turtle.dig/digUp/digDown.
func sideOp(op string, s side) string {
	switch s {
	case sideUp:
		return op + "Up"
	case sideDown:
		return op + "Down"
	}
	return op
}

func makeCall(id int64, op string, args ...any) rpcCall {
	if args == nil {
		args = []any{}
	}
	return rpcCall{ID: id, Op: op, Args: args}
}

func makeCallSide(id int64, op string, s side, args ...any) rpcCall {
	return makeCall(id, sideOp(op, s), args...)
}

// Chest ops address the peripheral by the side it is attached to.
func makeCallChest(id int64, op string, s side, args ...any) rpcCall {
	return makeCall(id, "chest."+op, append([]any{s.String()}, args...)...)
}

// Validates and decodes a raw reply.
func parseReply(raw []byte) (rpcReply, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return rpcReply{}, fmt.Errorf("rpc reply: %w", err)
	}
	if err := rpcReplyValidator.Validate(doc); err != nil {
		return rpcReply{}, fmt.Errorf("rpc reply: %w", err)
	}
	var rsp rpcReply
	if err := json.Unmarshal(raw, &rsp); err != nil {
		return rpcReply{}, fmt.Errorf("rpc reply: %w", err)
	}
	return rsp, nil
}

// Splits Ret into positional values. An object (the empty table) means no
// values.
func (r rpcReply) values() ([]json.RawMessage, error) {
	ret := bytes.TrimSpace(r.Ret)
	if len(ret) == 0 || ret[0] != '[' {
		return nil, nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(ret, &out); err != nil {
		return nil, fmt.Errorf("rpc reply ret: %w", err)
	}
	return out, nil
}

// Decodes return value i into dst. Missing values and JSON null leave dst
// untouched and report false.
func (r rpcReply) value(i int, dst any) bool {
	vals, err := r.values()
	if err != nil || i >= len(vals) {
		return false
	}
	v := bytes.TrimSpace(vals[i])
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return false
	}
	return json.Unmarshal(v, dst) == nil
}
