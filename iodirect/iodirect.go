// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package iodirect implements the direct-I/O input and output
// pipeline for fixed-width sorted line files: page-aligned block
// buffers and their recycling pool, the batched input stream, and
// the asynchronous block writer.
package iodirect

import (
	"unsafe"

	"github.com/entombedvirus/mpchal4/ints"
)

const (
	// Align is the buffer, offset and length alignment used for
	// direct I/O.
	Align = 4096
	// Chunk is the block size used for read and write buffers.
	Chunk = 1 << 20
)

// Block is a Chunk-sized write buffer whose backing array starts at
// an Align-ed address.
type Block struct {
	buf []byte
	pos int
}

// NewBlock allocates a fresh zeroed block.
func NewBlock() *Block {
	return &Block{buf: alignedSlice(Chunk, Align)}
}

// Write copies as much of p as fits and returns the number of bytes
// consumed.
func (b *Block) Write(p []byte) int {
	n := copy(b.buf[b.pos:], p)
	b.pos += n
	return n
}

// Len returns the current fill position.
func (b *Block) Len() int { return b.pos }

// Remaining returns the free space left in the block.
func (b *Block) Remaining() int { return len(b.buf) - b.pos }

// Bytes returns the filled prefix of the block.
func (b *Block) Bytes() []byte { return b.buf[:b.pos] }

// Reset empties the block for reuse.
func (b *Block) Reset() { b.pos = 0 }

// alignedSlice returns a size-byte slice whose first element sits at
// an address that is a multiple of align.
func alignedSlice(size, align int) []byte {
	buf := make([]byte, size+align)
	shift := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) & uintptr(align-1)); rem != 0 {
		shift = align - rem
	}
	buf = buf[shift : shift+size : shift+size]
	if !ints.IsAligned(uintptr(unsafe.Pointer(&buf[0])), uintptr(align)) {
		panic("iodirect: aligned allocation failed")
	}
	return buf
}

// Pool recycles blocks between the producer and the writer worker.
// It is safe for one producer and one consumer; acquisition never
// blocks.
type Pool struct {
	ch chan *Block
}

// NewPool returns a pool holding at most depth free blocks.
func NewPool(depth int) *Pool {
	return &Pool{ch: make(chan *Block, depth)}
}

// TryAcquire returns a recycled block if one is available and
// allocates a fresh one otherwise.
func (p *Pool) TryAcquire() *Block {
	select {
	case b := <-p.ch:
		return b
	default:
		return NewBlock()
	}
}

// Release returns a block to the pool; if the pool is full the
// block is dropped for the garbage collector.
func (p *Pool) Release(b *Block) {
	b.Reset()
	select {
	case p.ch <- b:
	default:
	}
}
