package main

import (
	"sort"

	"github.com/josephvusich/bundlegroup/bundlename"
)

// db indexes groups by folded identifier. A key only narrows the candidates;
// membership is decided by MatchesParser.
type db struct {
	m map[string][]*bundleGroup
}

func newDB() *db {
	return &db{
		m: make(map[string][]*bundleGroup),
	}
}

// group returns the group n belongs to, creating it if necessary.
func (d *db) group(n *bundlename.Name) *bundleGroup {
	key := n.Key()
	for _, g := range d.m[key] {
		if g.Name.MatchesParser(n) {
			return g
		}
	}

	g := newBundleGroup(n)
	d.m[key] = append(d.m[key], g)
	return g
}

func (d *db) groups() []*bundleGroup {
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	all := make([]*bundleGroup, 0, len(keys))
	for _, k := range keys {
		all = append(all, d.m[k]...)
	}
	return all
}
