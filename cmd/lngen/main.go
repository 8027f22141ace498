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

// lngen generates sorted fixed-width line files for development and
// benchmarking.
//
// usage:
//
//	lngen -n 2000000 -o files/2m.txt [-seed 1] [-z]
//
// -z additionally writes a zstd-compressed copy next to the output
// for cheap archival of large fixtures.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/entombedvirus/mpchal4/decimal"
	"github.com/entombedvirus/mpchal4/iodirect"
	"github.com/klauspost/compress/zstd"
)

var (
	dashn    int64
	dasho    string
	dashseed int64
	dashz    bool
	dashstep int64
)

func init() {
	flag.Int64Var(&dashn, "n", 1<<20, "number of lines to generate")
	flag.StringVar(&dasho, "o", "lines.txt", "output file")
	flag.Int64Var(&dashseed, "seed", 1, "random seed")
	flag.BoolVar(&dashz, "z", false, "also write a zstd-compressed copy")
	flag.Int64Var(&dashstep, "step", 1000, "maximum increment between consecutive lines")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func main() {
	flag.Parse()
	if dashn < 0 || dashstep <= 0 {
		exitf("bad -n or -step\n")
	}

	out, err := iodirect.CreateOutput(dasho, dashn*decimal.LineWidth)
	if err != nil {
		exitf("%v\n", err)
	}

	var zw *zstd.Encoder
	var zf *os.File
	if dashz {
		zf, err = os.Create(dasho + ".zst")
		if err != nil {
			exitf("%v\n", err)
		}
		zw, err = zstd.NewWriter(zf)
		if err != nil {
			exitf("%v\n", err)
		}
	}

	rng := rand.New(rand.NewSource(dashseed))
	v := uint64(1_600_000_000_000)
	line := make([]byte, 0, decimal.LineWidth)
	for i := int64(0); i < dashn; i++ {
		v += uint64(rng.Int63n(dashstep)) + 1
		if v > decimal.MaxValue {
			exitf("value overflow after %d lines; lower -step\n", i)
		}
		line = decimal.AppendLine(line[:0], v)
		if err := out.WriteLine(line); err != nil {
			exitf("%v\n", err)
		}
		if zw != nil {
			if _, err := zw.Write(line); err != nil {
				exitf("%v\n", err)
			}
		}
	}

	if err := out.Close(); err != nil {
		exitf("%v\n", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			exitf("%v\n", err)
		}
		if err := zf.Close(); err != nil {
			exitf("%v\n", err)
		}
	}
}
