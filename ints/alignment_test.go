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

package ints

import (
	"testing"
)

func TestAlignment(t *testing.T) {
	testcases := []struct {
		v, alignment, down, up uint64
	}{
		{0, 4096, 0, 0},
		{1, 4096, 0, 4096},
		{4095, 4096, 0, 4096},
		{4096, 4096, 4096, 4096},
		{4097, 4096, 4096, 8192},
		{1<<20 - 14, 4096, 1044480, 1 << 20},
		{1 << 20, 1 << 20, 1 << 20, 1 << 20},
	}
	for i := range testcases {
		tc := &testcases[i]
		if got := AlignDown(tc.v, tc.alignment); got != tc.down {
			t.Errorf("AlignDown(%d, %d) = %d, want %d", tc.v, tc.alignment, got, tc.down)
		}
		if got := AlignUp(tc.v, tc.alignment); got != tc.up {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tc.v, tc.alignment, got, tc.up)
		}
		if got := IsAligned(tc.v, tc.alignment); got != (tc.v == tc.down) {
			t.Errorf("IsAligned(%d, %d) = %v", tc.v, tc.alignment, got)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5, 0, 10) = %d", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5, 0, 10) = %d", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15, 0, 10) = %d", got)
	}
}

func TestChunkCount(t *testing.T) {
	if got := ChunkCount(uint(0), 14); got != 0 {
		t.Errorf("ChunkCount(0, 14) = %d", got)
	}
	if got := ChunkCount(uint(14), 14); got != 1 {
		t.Errorf("ChunkCount(14, 14) = %d", got)
	}
	if got := ChunkCount(uint(15), 14); got != 2 {
		t.Errorf("ChunkCount(15, 14) = %d", got)
	}
}
