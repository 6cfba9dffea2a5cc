// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/Hoosat-Oy/treegraphd/app"
)

const defaultMemoryLimit = 8_000_000_000

func memoryLimit() int64 {
	if v := os.Getenv("TREEGRAPHD_MEMLIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultMemoryLimit
}

func init() {
	debug.SetMemoryLimit(memoryLimit())
	runtime.GOMAXPROCS(runtime.NumCPU())
}

func main() {
	if err := app.StartApp(); err != nil {
		os.Exit(1)
	}
}
