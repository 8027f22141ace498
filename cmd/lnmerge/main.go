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

// lnmerge merges pre-sorted fixed-width line files into one sorted
// output file.
//
// usage:
//
//	lnmerge [-o output] [-v] input1 input2 ...
//	lnmerge -j job.yaml
//
// With no inputs at all, a development default set under files/ is
// used.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/entombedvirus/mpchal4/merge"
)

var (
	dasho string
	dashj string
	dashv bool
)

func init() {
	flag.StringVar(&dasho, "o", "result.txt", "output file")
	flag.StringVar(&dashj, "j", "", "merge job definition file (yaml or json)")
	flag.BoolVar(&dashv, "v", false, "verbose")
}

// devInputs is the default input set used during development when
// no inputs are given on the command line.
var devInputs = []string{
	"files/2m.txt",
	"files/4m.txt",
	"files/8m.txt",
	"files/10m.txt",
	"files/20m.txt",
	"files/40m.txt",
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	var job *merge.Job
	switch {
	case dashj != "" && flag.NArg() > 0:
		exitf("cannot combine a job definition with positional inputs\n")
	case dashj != "":
		j, err := merge.ReadJob(dashj)
		if err != nil {
			exitf("%v\n", err)
		}
		job = j
	default:
		inputs := flag.Args()
		if len(inputs) == 0 {
			inputs = devInputs
		}
		job = &merge.Job{Output: dasho, Inputs: inputs}
		if err := job.Check(); err != nil {
			exitf("%v\n", err)
		}
	}

	if dashv {
		log.Printf("run %s: merging %d inputs into %s", job.ID, len(job.Inputs), job.Output)
	}
	start := time.Now()
	lines, err := job.Run()
	if err != nil {
		exitf("%v\n", err)
	}
	if dashv {
		log.Printf("run %s: %d lines in %s", job.ID, lines, time.Since(start))
	}
}
