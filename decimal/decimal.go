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

// Package decimal implements batch decoding and encoding of
// fixed-width ASCII decimal lines.
//
// A line is exactly Digits ASCII digits followed by '\n'. The
// decoder trusts its input to be well-formed; callers are expected
// to validate framing before handing bytes over.
package decimal

import (
	"math/bits"

	"github.com/entombedvirus/mpchal4/internal/simd"
)

const (
	// LineWidth is the encoded size of one line, newline included.
	LineWidth = 14
	// Digits is the number of ASCII digits in one line.
	Digits = LineWidth - 1
	// MaxValue is the largest value a line can carry.
	MaxValue = 9_999_999_999_999
	// MaxTag is the largest file-origin tag accepted by ParsePacked.
	MaxTag = 19

	// batch is the number of lines decoded per vector iteration;
	// four 16-byte loads cover four LineWidth-byte lines.
	batch = 4
	// regWidth is the width of one vector load.
	regWidth = 16
)

var (
	ascii0 = splat('0')

	// shift the 13 digit lanes up so the two madd stages see
	// [0, 0, 0, d0, d1, ..., d12]
	numericShuffle = simd.Vec8x16{
		0x80, 0x80, 0x80, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
	}

	// keep the 13 digit lanes in place and zero the newline and
	// the spill-over from the next line
	packedShuffle = simd.Vec8x16{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 0x80, 0x80, 0x80,
	}

	mulPair10    = simd.Vec8x16{10, 1, 10, 1, 10, 1, 10, 1, 10, 1, 10, 1, 10, 1, 10, 1}
	mulPair16    = simd.Vec8x16{16, 1, 16, 1, 16, 1, 16, 1, 16, 1, 16, 1, 16, 1, 16, 1}
	mulPair100   = simd.Vec16x8{100, 1, 100, 1, 100, 1, 100, 1}
	mulPair10000 = simd.Vec16x8{10000, 1, 10000, 1, 10000, 1, 10000, 1}
)

func splat(b uint8) simd.Vec8x16 {
	var v simd.Vec8x16
	for i := range v {
		v[i] = b
	}
	return v
}

// ParseLines appends the numeric value of every line in src to dst
// and returns the extended slice. len(src) must be a multiple of
// LineWidth.
func ParseLines(src []byte, dst []uint64) []uint64 {
	if len(src)%LineWidth != 0 {
		panic("decimal: ParseLines can only handle complete lines")
	}
	pos := 0
	for pos+batch*regWidth <= len(src) {
		var vals [batch]uint64
		parseBatch(src[pos:], &vals)
		dst = append(dst, vals[:]...)
		pos += batch * LineWidth
	}
	for ; pos < len(src); pos += LineWidth {
		dst = append(dst, parseLine(src[pos:pos+LineWidth]))
	}
	return dst
}

// ParsePacked appends the packed-ordering encoding of every line in
// src to dst and returns the extended slice. The unsigned order of
// the outputs matches the lexicographic (equivalently, numeric)
// order of the lines; tag occupies the least-significant byte so
// duplicate lines from different origins stay distinguishable.
// len(src) must be a multiple of LineWidth and tag must not exceed
// MaxTag.
func ParsePacked(src []byte, dst []uint64, tag uint8) []uint64 {
	if len(src)%LineWidth != 0 {
		panic("decimal: ParsePacked can only handle complete lines")
	}
	if tag > MaxTag {
		panic("decimal: tag out of range")
	}
	pos := 0
	for pos+batch*regWidth <= len(src) {
		var vals [batch]uint64
		packBatch(src[pos:], tag, &vals)
		dst = append(dst, vals[:]...)
		pos += batch * LineWidth
	}
	for ; pos < len(src); pos += LineWidth {
		dst = append(dst, packLine(src[pos:pos+LineWidth], tag))
	}
	return dst
}

// parseBatch decodes batch consecutive lines starting at &src[0].
// The caller guarantees that batch*regWidth bytes are readable.
func parseBatch(src []byte, out *[batch]uint64) {
	var cleaned [batch]simd.Vec8x16
	for i := range cleaned {
		v := simd.VMOVDQU(&src[0], int64(i*LineWidth))
		simd.VPSUBB(&ascii0, &v, &v)
		simd.VPSHUFB(&numericShuffle, &v, &cleaned[i])
	}

	// pairs of digits -> two-digit numbers in 16-bit lanes
	var pairs [batch]simd.Vec16x8
	for i := range pairs {
		simd.VPMADDUBSW(&mulPair10, &cleaned[i], &pairs[i])
	}

	// pairs of two-digit numbers -> four-digit numbers in 32-bit lanes
	var quads [batch]simd.Vec32x4
	for i := range quads {
		simd.VPMADDWD(&mulPair100, &pairs[i], &quads[i])
	}

	// everything is below 2^15, so packing down to 16-bit lanes is
	// lossless and sets up the final madd
	for i := range quads {
		var packed simd.Vec16x8
		simd.VPACKSSDW(&quads[i], &quads[i], &packed)
		simd.VPMADDWD(&mulPair10000, &packed, &quads[i])
	}

	for i := range quads {
		hi := uint64(quads[i][0]) // top 5 digits
		lo := uint64(quads[i][1]) // bottom 8 digits
		out[i] = hi*100_000_000 + lo
	}
}

// packBatch encodes batch consecutive lines starting at &src[0]
// into packed-ordering words. The caller guarantees that
// batch*regWidth bytes are readable.
func packBatch(src []byte, tag uint8, out *[batch]uint64) {
	for i := range out {
		v := simd.VMOVDQU(&src[0], int64(i*LineWidth))
		simd.VPSUBB(&ascii0, &v, &v)
		simd.VPSHUFB(&packedShuffle, &v, &v)

		// adjacent digits collapse into one byte per pair:
		// 16*hi + lo is hi<<4 | lo for digits
		var nibbles simd.Vec16x8
		simd.VPMADDUBSW(&mulPair16, &v, &nibbles)
		simd.VPACKUSWB(&nibbles, &nibbles, &v)

		// the most significant digit pair must land in the top
		// byte for unsigned comparisons to follow line order
		out[i] = bits.ReverseBytes64(v.ToVec64x2()[0]) | uint64(tag)
	}
}

// parseLine is the scalar remainder path; it is bit-identical to
// parseBatch for well-formed lines.
func parseLine(line []byte) uint64 {
	var res uint64
	for _, c := range line[:Digits] {
		res = res*10 + uint64(c-'0')
	}
	return res
}

// packLine is the scalar remainder path for ParsePacked.
func packLine(line []byte, tag uint8) uint64 {
	var res uint64
	for i := 0; i < Digits; i += 2 {
		hi := line[i] - '0'
		lo := uint8(0)
		if i+1 < Digits {
			lo = line[i+1] - '0'
		}
		res = res<<8 | uint64(hi<<4|lo)
	}
	return res<<8 | uint64(tag)
}

// two-digit decimal lookup table
const dec2lut = "00010203040506070809" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

// AppendLine appends the canonical encoding of v (Digits zero-padded
// ASCII digits plus '\n') to dst and returns the extended slice.
// v must not exceed MaxValue.
func AppendLine(dst []byte, v uint64) []byte {
	if v > MaxValue {
		panic("decimal: value does not fit in a line")
	}
	var line [LineWidth]byte
	rem := v
	for i := 0; i < 6; i++ {
		q := rem % 100
		rem /= 100
		line[Digits-2-2*i] = dec2lut[2*q]
		line[Digits-1-2*i] = dec2lut[2*q+1]
	}
	line[0] = '0' + byte(rem)
	line[Digits] = '\n'
	return append(dst, line[:]...)
}
