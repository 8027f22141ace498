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

// Package merge drives the k-way merge of pre-sorted fixed-width
// line files.
package merge

import (
	"fmt"

	"github.com/entombedvirus/mpchal4/iodirect"
	"golang.org/x/exp/slices"
)

// MaxInputs bounds the merge fan-in; the selection loop is a linear
// scan sized for it.
const MaxInputs = 20

// Merge repeatedly emits the globally smallest head line across
// srcs until every stream is exhausted, and returns the number of
// lines written. Exhausted streams are removed as they drain; ties
// between streams are broken arbitrarily. Merge does not close dst
// or the sources.
func Merge(dst *iodirect.OutputFile, srcs []*iodirect.SortedFile) (int64, error) {
	if len(srcs) > MaxInputs {
		return 0, fmt.Errorf("merge: %d inputs exceeds the maximum of %d", len(srcs), MaxInputs)
	}
	live := slices.Clone(srcs)
	var lines int64
	for {
		idx := findMin(live)
		if idx < 0 {
			return lines, nil
		}
		src := live[idx]
		if err := dst.WriteLine(src.PeekBytes()); err != nil {
			return lines, err
		}
		lines++
		if err := src.Next(); err != nil {
			return lines, err
		}
		if _, ok := src.Peek(); !ok {
			// order of the remaining streams is irrelevant,
			// so swap-remove
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}
}

// findMin returns the index of the stream with the smallest head
// value, or -1 when no stream has one.
func findMin(srcs []*iodirect.SortedFile) int {
	idx := -1
	var min uint64
	for i, s := range srcs {
		v, ok := s.Peek()
		if !ok {
			continue
		}
		if idx < 0 || v < min {
			idx, min = i, v
		}
	}
	return idx
}

// ExpectedSize returns the byte size of the merged output of srcs:
// the sum of the inputs' sizes with missing final newlines
// normalized.
func ExpectedSize(srcs []*iodirect.SortedFile) int64 {
	var total int64
	for _, s := range srcs {
		total += s.LogicalSize()
	}
	return total
}
