package main

import (
	"encoding/json"

	"github.com/google/btree"
	"golang.org/x/net/websocket"
)

type statusPut struct {
	key string
	doc json.RawMessage
}

// One stored document, ordered in the log by the sequence it was put at.
type statusVersion struct {
	seq int64
	key string
	doc json.RawMessage
}

func (this statusVersion) Less(than btree.Item) bool {
	return this.seq < than.(statusVersion).seq
}

type statusQuery struct {
	since int64
	rsp   chan statusDelta
}

type statusDelta struct {
	// Sequence to query from next time.
	next int64
	docs map[string]json.RawMessage
	// Closed on the next put.
	changed chan struct{}
}

// syncHub keeps the latest status document per key (one per turtle) in a
// log ordered by version, and streams changes to websocket clients. All
// state is owned by the run goroutine.
type syncHub struct {
	ch chan interface{}
}

func newSyncHub() *syncHub {
	h := &syncHub{ch: make(chan interface{}, 16)}
	go h.run()
	return h
}

func (h *syncHub) run() {
	seq_next := int64(1)
	key_seq := map[string]int64{}
	vlog := btree.New(8)
	changed := make(chan struct{})
	for {
		req := <-h.ch
		switch req := req.(type) {
		case statusPut:
			vlog.Delete(statusVersion{seq: key_seq[req.key]})
			key_seq[req.key] = seq_next
			vlog.ReplaceOrInsert(statusVersion{seq: seq_next, key: req.key, doc: req.doc})
			seq_next++
			close(changed)
			changed = make(chan struct{})
		case statusQuery:
			docs := map[string]json.RawMessage{}
			vlog.AscendGreaterOrEqual(statusVersion{seq: req.since}, func(i btree.Item) bool {
				v := i.(statusVersion)
				docs[v.key] = v.doc
				return true
			})
			req.rsp <- statusDelta{next: seq_next, docs: docs, changed: changed}
		}
	}
}

// Stores a new version of a document. doc must be valid JSON.
func (h *syncHub) put(key string, doc []byte) {
	h.ch <- statusPut{key: key, doc: append(json.RawMessage(nil), doc...)}
}

// Returns every document put at or after sequence since.
func (h *syncHub) since(since int64) statusDelta {
	q := statusQuery{since: since, rsp: make(chan statusDelta, 1)}
	h.ch <- q
	return <-q.rsp
}

// One JSON object keyed by document key.
func encodeStatusDelta(docs map[string]json.RawMessage) ([]byte, error) {
	if docs == nil {
		docs = map[string]json.RawMessage{}
	}
	return json.Marshal(docs)
}

// Streams status deltas to a client. The client acks every message before
// the next one is sent.
func (h *syncHub) serveWS(ws *websocket.Conn) {
	acks := make(chan struct{})
	gone := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(gone)
		for {
			var ack []byte
			if err := websocket.Message.Receive(ws, &ack); err != nil {
				return
			}
			select {
			case acks <- struct{}{}:
			case <-done:
				return
			}
		}
	}()

	last := int64(0)
	for {
		delta := h.since(last)
		payload, err := encodeStatusDelta(delta.docs)
		if err != nil {
			return
		}
		if err := websocket.Message.Send(ws, string(payload)); err != nil {
			return
		}
		select {
		case <-acks:
		case <-gone:
			return
		}
		last = delta.next
		select {
		case <-delta.changed:
		case <-gone:
			return
		}
	}
}
