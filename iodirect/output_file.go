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

package iodirect

import (
	"fmt"
	"io"
	"os"

	"github.com/entombedvirus/mpchal4/decimal"
	"github.com/entombedvirus/mpchal4/ints"
)

const (
	// submitDepth bounds how many completed blocks may be queued
	// for the writer worker before the producer blocks.
	submitDepth = 4
	// poolDepth bounds how many free blocks the recycling pool
	// retains.
	poolDepth = submitDepth + 2
)

// OutputFile packs fixed-width lines into aligned blocks and writes
// them through a dedicated worker goroutine. Blocks reach the disk
// in submission order at a monotonically increasing offset; only the
// final block may have a non-aligned length, and the padding it
// gains is removed by a truncate when the writer is closed.
type OutputFile struct {
	f    *os.File
	cur  *Block
	subs chan *Block
	pool *Pool
	done chan struct{}

	// written by the worker before done is closed
	workerErr error
}

// CreateOutput creates path truncated, pre-allocates expectedSize
// bytes without changing the visible length, and starts the writer
// worker.
func CreateOutput(path string, expectedSize int64) (*OutputFile, error) {
	f, err := createDirect(path)
	if err != nil {
		return nil, err
	}
	if err := preallocate(f, expectedSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("preallocating %s: %w", path, err)
	}
	o := &OutputFile{
		f:    f,
		cur:  NewBlock(),
		subs: make(chan *Block, submitDepth),
		pool: NewPool(poolDepth),
		done: make(chan struct{}),
	}
	go o.worker()
	return o, nil
}

// WriteLine appends one LineWidth-byte line. A line that does not
// fit in the current block is split across the block boundary; the
// concatenation of written blocks is exactly the byte sequence of
// lines emitted.
func (o *OutputFile) WriteLine(line []byte) error {
	if len(line) != decimal.LineWidth {
		return fmt.Errorf("iodirect: WriteLine got %d bytes, want %d", len(line), decimal.LineWidth)
	}
	n := o.cur.Write(line)
	if n < len(line) {
		o.flush()
		o.cur.Write(line[n:])
	}
	return nil
}

// flush hands the current block to the worker and swaps in a
// recycled one.
func (o *OutputFile) flush() {
	if o.cur.Len() == 0 {
		return
	}
	full := o.cur
	o.cur = o.pool.TryAcquire()
	o.subs <- full
}

// Close flushes the residual block, waits for the worker to drain
// and truncate, and reports the first write error, if any.
func (o *OutputFile) Close() error {
	o.flush()
	close(o.subs)
	<-o.done
	err := o.workerErr
	if cerr := o.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// worker consumes blocks in submission order and issues aligned
// positional writes. The offset is a running sum owned exclusively
// by the worker. After the submission channel closes it truncates
// the file back to the logical data length.
func (o *OutputFile) worker() {
	defer close(o.done)
	var off, pad int64
	for b := range o.subs {
		if o.workerErr != nil {
			// drain so the producer never blocks
			o.pool.Release(b)
			continue
		}
		n := int64(b.Len())
		if !ints.IsAligned(n, Align) {
			if pad != 0 {
				panic("iodirect: non-aligned write is only expected once at the very end")
			}
			pad = ints.AlignUp(n, Align) - n
			zero(b.buf[n : n+pad])
			n += pad
		}
		nw, err := o.f.WriteAt(b.buf[:n], off)
		if err == nil && int64(nw) != n {
			err = io.ErrShortWrite
		}
		if err != nil {
			o.workerErr = fmt.Errorf("iodirect: writing block at offset %d: %w", off, err)
			o.pool.Release(b)
			continue
		}
		off += n
		o.pool.Release(b)
	}
	if o.workerErr != nil {
		return
	}
	if err := o.f.Truncate(off - pad); err != nil {
		o.workerErr = fmt.Errorf("iodirect: truncating output: %w", err)
	}
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
