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
	"fmt"
	"os"

	"github.com/entombedvirus/mpchal4/iodirect"
	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

// Job describes one merge invocation. Jobs are usually written as
// small YAML (or JSON) definition files.
type Job struct {
	// ID identifies the run in logs. A fresh one is assigned when
	// the definition leaves it empty.
	ID string `json:"id,omitempty"`
	// Output is the path of the merged result.
	Output string `json:"output"`
	// Inputs are the paths of the pre-sorted input files.
	Inputs []string `json:"inputs"`
}

// ReadJob decodes a job definition file.
func ReadJob(path string) (*Job, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	j := new(Job)
	if err := yaml.Unmarshal(buf, j); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", path, err)
	}
	if err := j.Check(); err != nil {
		return nil, fmt.Errorf("job %s: %w", path, err)
	}
	return j, nil
}

// Check validates the definition and assigns a run ID if none is
// set.
func (j *Job) Check() error {
	if j.Output == "" {
		return fmt.Errorf("no output path")
	}
	if len(j.Inputs) > MaxInputs {
		return fmt.Errorf("%d inputs exceeds the maximum of %d", len(j.Inputs), MaxInputs)
	}
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// Run opens the job's inputs and output, merges, and closes
// everything. It returns the number of lines written.
func (j *Job) Run() (int64, error) {
	srcs := make([]*iodirect.SortedFile, 0, len(j.Inputs))
	defer func() {
		for _, s := range srcs {
			s.Close()
		}
	}()
	for _, path := range j.Inputs {
		s, err := iodirect.OpenSorted(path)
		if err != nil {
			return 0, err
		}
		srcs = append(srcs, s)
	}

	dst, err := iodirect.CreateOutput(j.Output, ExpectedSize(srcs))
	if err != nil {
		return 0, err
	}
	lines, err := Merge(dst, srcs)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return lines, err
}
