// Package debug holds diagnostic switches read from the environment at
// start up, and helpers to log to stderr when they are on.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Links   bool
	Persist bool
	Iter    bool
	Find    bool
	Filter  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Links = boolEnv("ITREE_DEBUG_LINKS")
	d.Persist = boolEnv("ITREE_DEBUG_PERSIST")
	d.Iter = boolEnv("ITREE_DEBUG_ITER")
	d.Find = boolEnv("ITREE_DEBUG_FIND")
	d.Filter = boolEnv("ITREE_DEBUG_FILTER")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Links() bool {
	return d.Links
}
func Persist() bool {
	return d.Persist
}
func Iter() bool {
	return d.Iter
}
func Find() bool {
	return d.Find
}
func Filter() bool {
	return d.Filter
}
