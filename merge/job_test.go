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

package merge

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestReadJob(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "job.yaml")
	err := os.WriteFile(def, []byte(""+
		"output: result.txt\n"+
		"inputs:\n"+
		"  - files/2m.txt\n"+
		"  - files/4m.txt\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	j, err := ReadJob(def)
	if err != nil {
		t.Fatal(err)
	}
	if j.Output != "result.txt" || len(j.Inputs) != 2 {
		t.Fatalf("decoded %+v", j)
	}
	if j.ID == "" {
		t.Fatal("expected a generated run ID")
	}
}

func TestReadJobRejectsMissingOutput(t *testing.T) {
	def := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(def, []byte("inputs: [a.txt]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadJob(def); err == nil {
		t.Fatal("expected an error for a job without an output")
	}
}

func TestJobRun(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.txt", []uint64{100, 300}, false)
	b := writeInput(t, dir, "b.txt", []uint64{200, 400}, false)
	out := filepath.Join(dir, "out.txt")

	j := &Job{Output: out, Inputs: []string{a, b}}
	if err := j.Check(); err != nil {
		t.Fatal(err)
	}
	lines, err := j.Run()
	if err != nil {
		t.Fatal(err)
	}
	if lines != 4 {
		t.Fatalf("lines = %d", lines)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, expect([][]uint64{{100, 300}, {200, 400}})) {
		t.Fatalf("got %q", got)
	}
}
