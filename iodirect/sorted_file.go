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
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/entombedvirus/mpchal4/decimal"
)

// ErrMalformed is returned when an input file violates the
// fixed-width line framing.
var ErrMalformed = errors.New("iodirect: malformed input line")

// SortedFile streams one pre-sorted input file as a sequence of
// parsed values and their raw line bytes.
//
// The read buffer reserves Align bytes in front of the block region;
// a partial line left over by the previous refill is relocated there
// so that decoding always sees whole lines. Invariant: the k-th
// parsed value of the current batch corresponds to the k-th
// LineWidth-byte window starting at the current block base.
type SortedFile struct {
	// Size is the on-disk size of the input as stat'd at open.
	Size int64

	f   *os.File
	buf []byte // Align carry region + Chunk block region

	pos    int // block base of the current batch
	filled int
	carry  int // partial-line bytes saved at buf[0:carry]
	eof    bool

	vals   []uint64
	valPos int
}

// OpenSorted opens path with unbuffered direct I/O and primes the
// first batch of parsed values.
func OpenSorted(path string) (*SortedFile, error) {
	f, err := openDirect(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	s := &SortedFile{
		Size:   info.Size(),
		f:      f,
		buf:    alignedSlice(Align+Chunk, Align),
		pos:    Align,
		filled: Align,
		vals:   make([]uint64, 0, Chunk/decimal.LineWidth),
	}
	if err := s.refill(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// LogicalSize is the byte count this input contributes to a merged
// output: Size, plus one byte when the final line is missing its
// newline terminator.
func (s *SortedFile) LogicalSize() int64 {
	if s.Size%decimal.LineWidth == decimal.LineWidth-1 {
		return s.Size + 1
	}
	return s.Size
}

// Peek returns the parsed value of the current line; ok is false
// only at end of stream.
func (s *SortedFile) Peek() (v uint64, ok bool) {
	if s.valPos >= len(s.vals) {
		return 0, false
	}
	return s.vals[s.valPos], true
}

// PeekBytes returns the raw LineWidth bytes of the current line.
// It must not be called after Peek reports end of stream. The
// returned slice aliases the read buffer and is invalidated by Next.
func (s *SortedFile) PeekBytes() []byte {
	base := s.pos + s.valPos*decimal.LineWidth
	return s.buf[base : base+decimal.LineWidth]
}

// Next advances the cursor by one line, refilling the batch if it
// is exhausted.
func (s *SortedFile) Next() error {
	s.valPos++
	return s.refill()
}

// Close releases the underlying file handle.
func (s *SortedFile) Close() error {
	return s.f.Close()
}

func (s *SortedFile) refill() error {
	if s.valPos < len(s.vals) {
		return nil
	}
	s.valPos = 0
	s.vals = s.vals[:0]

	s.pos = Align
	s.filled = Align
	if s.carry > 0 {
		s.pos -= s.carry
		copy(s.buf[s.pos:Align], s.buf[:s.carry])
		s.carry = 0
	}

	if err := s.fill(); err != nil {
		return err
	}

	avail := s.buf[s.pos:s.filled]
	whole := len(avail) / decimal.LineWidth * decimal.LineWidth
	s.carry = len(avail) - whole
	if s.carry > 0 && s.eof {
		// trailing bytes that no further read can complete; carry
		// includes the newline that fill synthesized after them
		return fmt.Errorf("%w: %d stray bytes at end of file", ErrMalformed, s.carry-1)
	}
	body := avail[:whole]
	for i := decimal.LineWidth - 1; i < len(body); i += decimal.LineWidth {
		if body[i] != '\n' {
			return fmt.Errorf("%w: line terminator %q at offset %d", ErrMalformed, body[i], i)
		}
	}
	s.vals = decimal.ParseLines(body, s.vals)

	// save the partial line up front so the next refill can
	// relocate it in front of its block
	copy(s.buf[:s.carry], s.buf[s.filled-s.carry:s.filled])
	return nil
}

// fill reads into the block region until at least one whole line is
// buffered or the file is exhausted. A final line missing its '\n'
// gets one synthesized so downstream code can rely on uniform
// framing.
func (s *SortedFile) fill() error {
	for s.filled-s.pos < decimal.LineWidth {
		n, err := s.f.Read(s.buf[s.filled:])
		s.filled += n
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			if err == io.EOF {
				s.eof = true
				break
			}
			return err
		}
		if n == 0 {
			s.eof = true
			break
		}
	}
	if avail := s.filled - s.pos; avail > 0 && avail < decimal.LineWidth {
		s.buf[s.filled] = '\n'
		s.filled++
	}
	return nil
}
