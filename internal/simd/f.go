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

package simd

import (
	"unsafe"
)

// VMOVDQU loads 16 bytes at p+offs without alignment requirements.
func VMOVDQU(p *uint8, offs int64) Vec8x16 {
	var r Vec8x16
	s := unsafe.Slice((*uint8)(unsafe.Add(unsafe.Pointer(p), offs)), 16)
	copy(r[:], s)
	return r
}

func VPSUBB(a, b, r *Vec8x16) {
	for i := range *r {
		r[i] = b[i] - a[i]
	}
}

// VPSHUFB permutes the bytes of a according to the low nibbles
// of the control vector; a control byte with the high bit set
// zeroes the destination lane.
func VPSHUFB(ctl, a, r *Vec8x16) {
	var t Vec8x16
	for i := range t {
		if ctl[i]&0x80 == 0 {
			t[i] = a[ctl[i]&0x0f]
		}
	}
	*r = t
}

// VPMADDUBSW multiplies the unsigned bytes of a by the signed bytes
// of mul and adds adjacent pairs into signed 16-bit lanes with
// saturation.
func VPMADDUBSW(mul, a *Vec8x16, r *Vec16x8) {
	for i := range *r {
		v := int32(uint32(a[2*i]))*int32(int8(mul[2*i])) +
			int32(uint32(a[2*i+1]))*int32(int8(mul[2*i+1]))
		r[i] = uint16(satI16(v))
	}
}

// VPMADDWD multiplies the signed 16-bit lanes of a by the signed
// 16-bit lanes of mul and adds adjacent pairs into 32-bit lanes.
func VPMADDWD(mul, a *Vec16x8, r *Vec32x4) {
	for i := range *r {
		v := int32(int16(a[2*i]))*int32(int16(mul[2*i])) +
			int32(int16(a[2*i+1]))*int32(int16(mul[2*i+1]))
		r[i] = uint32(v)
	}
}

// VPACKSSDW packs the signed 32-bit lanes of a and b into signed
// 16-bit lanes with saturation; a fills lanes 0..3, b lanes 4..7.
func VPACKSSDW(a, b *Vec32x4, r *Vec16x8) {
	var t Vec16x8
	for i := range *a {
		t[i] = uint16(satI16(int32(a[i])))
		t[i+4] = uint16(satI16(int32(b[i])))
	}
	*r = t
}

// VPACKUSWB packs the signed 16-bit lanes of a and b into unsigned
// 8-bit lanes with saturation; a fills lanes 0..7, b lanes 8..15.
func VPACKUSWB(a, b *Vec16x8, r *Vec8x16) {
	var t Vec8x16
	for i := range *a {
		t[i] = satU8(int16(a[i]))
		t[i+8] = satU8(int16(b[i]))
	}
	*r = t
}

func satI16(v int32) int16 {
	if v > 0x7fff {
		return 0x7fff
	}
	if v < -0x8000 {
		return -0x8000
	}
	return int16(v)
}

func satU8(v int16) uint8 {
	if v > 0xff {
		return 0xff
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}
