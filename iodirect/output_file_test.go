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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/entombedvirus/mpchal4/decimal"
)

func TestOutputFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	o, err := CreateOutput(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("empty output has size %d", info.Size())
	}
}

func TestOutputFileSingleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	o, err := CreateOutput(path, decimal.LineWidth)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.WriteLine([]byte("1671670171236\n")); err != nil {
		t.Fatal(err)
	}
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "1671670171236\n" {
		t.Fatalf("got %q", got)
	}
}

func TestOutputFileRejectsWrongWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	o, err := CreateOutput(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()
	if err := o.WriteLine([]byte("123\n")); err == nil {
		t.Fatal("expected an error for a short line")
	}
}

// TestOutputFileBlockBoundary writes enough lines that several
// blocks cross the worker, with lines split at block boundaries;
// the final file must be the exact concatenation of all lines with
// the alignment padding truncated away.
func TestOutputFileBlockBoundary(t *testing.T) {
	vals := genSorted(t, 2*Chunk/decimal.LineWidth+3, 42)
	var want []byte
	for _, v := range vals {
		want = decimal.AppendLine(want, v)
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	o, err := CreateOutput(path, int64(len(want)))
	if err != nil {
		t.Fatal(err)
	}
	for pos := 0; pos < len(want); pos += decimal.LineWidth {
		if err := o.WriteLine(want[pos : pos+decimal.LineWidth]); err != nil {
			t.Fatal(err)
		}
	}
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("size %d, want %d (alignment padding not truncated?)", len(got), len(want))
	}
	if !bytes.Equal(got, want) {
		t.Fatal("output bytes differ from input lines")
	}
}

// TestOutputFileRoundTrip streams a SortedFile straight back out
// and expects byte-for-byte identical content.
func TestOutputFileRoundTrip(t *testing.T) {
	vals := genSorted(t, Chunk/decimal.LineWidth+11, 7)
	in := writeFixture(t, vals, false)
	src, err := OpenSorted(in)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	out := filepath.Join(t.TempDir(), "out.txt")
	dst, err := CreateOutput(out, src.LogicalSize())
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, ok := src.Peek(); !ok {
			break
		}
		if err := dst.WriteLine(src.PeekBytes()); err != nil {
			t.Fatal(err)
		}
		if err := src.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if err := dst.Close(); err != nil {
		t.Fatal(err)
	}

	want, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch: %d bytes vs %d bytes", len(got), len(want))
	}
}
