package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/josephvusich/bundlegroup/bundlename"
)

type fileTable struct {
	// The directory currently being walked by scanner.Scan
	scanDir string

	// scanDir relative to the startup working directory
	relDir string

	db *db

	// Relative paths of files that matched no naming convention, in scan order.
	unmatched []string

	// 0 == quiet, -1 == error/not a terminal
	termWidth int

	options *options
	totals  *totals
}

func newFileTable(o *options, t *totals) *fileTable {
	return &fileTable{
		db:      newDB(),
		options: o,
		totals:  t,
	}
}

type checksum struct {
	size int64
	hash [ChecksumBlockSize]byte
}

type bundleRecord struct {
	// Absolute file path.
	FilePath string

	// File path relative to startup working directory.
	RelPath string

	// nil if the base name matched no convention.
	Name *bundlename.Name

	os.FileInfo
	HasChecksum    bool
	FailedChecksum error
	Checksum       checksum

	// Earlier member of the same group with identical content.
	DuplicateOf *bundleRecord
}

func newBundleRecord(path string, info os.FileInfo, relPath string) *bundleRecord {
	return &bundleRecord{
		FilePath: path,
		RelPath:  relPath,
		Name:     bundlename.Parse(filepath.Base(path)),
		FileInfo: info,
	}
}

func (r *bundleRecord) String() string {
	return fmt.Sprintf("%s: %s %t %X", r.FilePath, r.Name, r.HasChecksum, r.Checksum.hash)
}

// Rel returns absPath relative to the startup working directory,
// or absPath if filepath.Rel fails.
func (t *fileTable) Rel(absPath string) (rel string) {
	rel, err := filepath.Rel(t.scanDir, absPath)
	if err != nil {
		return absPath
	}
	return filepath.Join(t.relDir, rel)
}

const truncFill = " ... "

func (t *fileTable) progress(s string, makeRelPath bool) {
	if t.termWidth <= 0 {
		return
	}

	if makeRelPath {
		s = t.Rel(s)
	}

	if t.termWidth > len(truncFill)+2 && len(s) >= t.termWidth {
		chunkSize := (t.termWidth - len(truncFill) - 1) >> 1
		s = s[:chunkSize] + truncFill + s[len(s)-chunkSize:]
	}

	fmt.Printf("\033[2K%s\r", s)
}

// fileStatus is returned in place of an error for files that were handled
// without being added to a group as a new, distinct bundle.
type fileStatus uint

const (
	fileIsDuplicate fileStatus = iota + 1 // grouped, but identical to an earlier member
	fileIsUnmatched                       // name matched no convention
	fileIsFiltered                        // excluded by --kind, --character or --variant
	fileIsSkipped                         // excluded e.g., due to size requirements
	fileIsIgnored                         // status returned for directories and excluded globs
)

func (s fileStatus) Error() string {
	switch s {
	case fileIsDuplicate:
		return "duplicate"
	case fileIsUnmatched:
		return "unmatched"
	case fileIsFiltered:
		return "filtered"
	case fileIsSkipped:
		return "skipped"
	case fileIsIgnored:
		return "ignored"
	}
	return fmt.Sprintf("FileStatus<%d>", uint(s))
}

func (t *fileTable) find(f string) (group *bundleGroup, current *bundleRecord, err error) {
	if !t.options.Filter.Includes(f) {
		return nil, nil, fileIsIgnored
	}
	st, err := os.Stat(f)
	if err != nil {
		return nil, nil, err
	}
	return t.findStat(f, st)
}

func (t *fileTable) findStat(f string, st os.FileInfo) (group *bundleGroup, current *bundleRecord, err error) {
	if st.IsDir() {
		return nil, nil, fileIsIgnored
	}

	if st.Size() < t.options.MinSize {
		return nil, nil, fileIsSkipped
	}

	current = newBundleRecord(f, st, t.Rel(f))
	if !current.Name.IsValid() {
		t.unmatched = append(t.unmatched, current.RelPath)
		return nil, current, fileIsUnmatched
	}

	if !t.options.Selects(current.Name) {
		return nil, current, fileIsFiltered
	}

	group = t.db.group(current.Name)

	if t.options.Checksum {
		current.DuplicateOf = t.findDuplicate(group, current)
	}

	group.add(current)
	if current.DuplicateOf != nil {
		return group, current, fileIsDuplicate
	}
	return group, current, nil
}

// Groups returns the groups to list and export, sorted by identifier.
func (t *fileTable) Groups() []*bundleGroup {
	all := t.db.groups()
	if !t.options.CompleteOnly {
		return all
	}
	filtered := all[:0]
	for _, g := range all {
		if g.Complete() {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

func (t *fileTable) PrettyFormat() string {
	var lines []string
	for _, g := range t.Groups() {
		lines = append(lines, g.PrettyFormat())
	}
	return strings.Join(lines, "\n")
}

type bundleGroup struct {
	// Name of the first member; all members satisfy Name.MatchesParser.
	Name    *bundlename.Name
	Members []*bundleRecord

	kinds map[bundlename.Kind]int
}

func newBundleGroup(n *bundlename.Name) *bundleGroup {
	return &bundleGroup{
		Name:  n,
		kinds: make(map[bundlename.Kind]int),
	}
}

func (g *bundleGroup) add(r *bundleRecord) {
	g.Members = append(g.Members, r)
	g.kinds[r.Name.Kind()]++
}

func (g *bundleGroup) Identifier() string {
	return g.Name.FullIdentifier()
}

func (g *bundleGroup) Has(k bundlename.Kind) bool {
	return g.kinds[k] > 0
}

func (g *bundleGroup) Missing() (missing []bundlename.Kind) {
	for _, k := range bundlename.Kinds() {
		if !g.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

func (g *bundleGroup) Complete() bool {
	return len(g.Missing()) == 0
}

// Distinct returns members that are not duplicates of another member.
func (g *bundleGroup) Distinct() []*bundleRecord {
	distinct := make([]*bundleRecord, 0, len(g.Members))
	for _, r := range g.Members {
		if r.DuplicateOf == nil {
			distinct = append(distinct, r)
		}
	}
	return distinct
}

func (g *bundleGroup) Size() (size int64) {
	for _, r := range g.Distinct() {
		size += r.Size()
	}
	return size
}

func (g *bundleGroup) PrettyFormat() string {
	distinct := g.Distinct()
	noun := "bundles"
	if len(distinct) == 1 {
		noun = "bundle"
	}

	lines := []string{
		fmt.Sprintf("%s (%d %s, %s)", g.Identifier(), len(distinct), noun, humanize.IBytes(uint64(g.Size()))),
	}
	for _, k := range bundlename.Kinds() {
		if !g.Has(k) {
			lines = append(lines, fmt.Sprintf("  %-10s -- missing", k))
			continue
		}
		for _, r := range g.Members {
			if r.Name.Kind() != k {
				continue
			}
			if r.DuplicateOf != nil {
				lines = append(lines, fmt.Sprintf("  %-10s %s == %s", k, r.RelPath, r.DuplicateOf.RelPath))
			} else {
				lines = append(lines, fmt.Sprintf("  %-10s %s", k, r.RelPath))
			}
		}
	}
	return strings.Join(lines, "\n")
}
