package graph

import (
	"errors"
	"sync/atomic"
)

var ErrDisconnected = errors.New("node is disconnected")

// Node is one processing stage of a Chain.
type Node interface {
	Name() string
	// Process transforms buf in place.
	Process(buf []float32)
	Connect(next Node) error
	Next() Node
	// Disconnect removes all connections of this node. A disconnected node
	// cannot be connected again.
	Disconnect()
	Connected() bool
}

type node struct {
	name  string
	next  Node
	alive atomic.Bool
	live  *atomic.Int64
}

func (this *node) init(name string, live *atomic.Int64) {
	this.name = name
	this.live = live
	this.alive.Store(true)
	if live != nil {
		live.Add(1)
	}
}

func (this *node) Name() string {
	return this.name
}

func (this *node) Connect(next Node) error {
	if !this.alive.Load() || !next.Connected() {
		return ErrDisconnected
	}
	this.next = next
	return nil
}

func (this *node) Next() Node {
	return this.next
}

func (this *node) Disconnect() {
	if this.alive.CompareAndSwap(true, false) {
		this.next = nil
		if v := this.live; v != nil {
			v.Add(-1)
		}
	}
}

func (this *node) Connected() bool {
	return this.alive.Load()
}

// Source feeds the microphone samples into the chain.
type Source struct {
	node
}

func (this *Source) read(in, buf []float32) {
	n := copy(buf, in)
	clear(buf[n:])
}

func (this *Source) Process([]float32) {}

// Sink is the output device end of the chain.
type Sink struct {
	node
}

func (this *Sink) write(buf, out []float32) {
	n := copy(out, buf)
	clear(out[n:])
}

func (this *Sink) Process([]float32) {}
