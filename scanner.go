package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

type scanner struct {
	Mutex struct {
		// Export writes hold a read lock from temp file creation to rename.
		// Termination of process requires write lock
		Destructive sync.RWMutex
	}

	table   *fileTable
	options options
	totals  totals
}

func newScanner() *scanner {
	s := &scanner{}
	s.table = newFileTable(&s.options, &s.totals)
	s.options.Filter.DefaultInclude = true
	return s
}

// Don't display warnings for these dotfiles
var silentSkip = map[string]struct{}{
	".DS_Store":               {},
	".DocumentRevisions-V100": {},
	".Spotlight-V100":         {},
	".TemporaryItems":         {},
	".Trashes":                {},
	".fseventsd":              {},
}

func (f *scanner) Scan(dirs ...string) (err error) {
	if !f.options.Quiet {
		f.table.termWidth, _ = terminalWidth()
	}
	f.totals.Start()

	if f.options.Verbose && f.options.Filter.Len() != 0 {
		fmt.Printf("glob rules:\n%s\n", f.options.Filter.String())
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		dirs = []string{wd}
	}

	for _, d := range dirs {
		if f.table.scanDir, err = filepath.Abs(d); err != nil {
			return fmt.Errorf("unable to resolve \"%s\": %w", d, err)
		}
		if f.table.relDir, err = filepath.Rel(wd, f.table.scanDir); err != nil || len(f.table.relDir) >= len(f.table.scanDir) {
			f.table.relDir = f.table.scanDir
		}

		if err = filepath.Walk(f.table.scanDir, f.walkFunc); err != nil {
			return err
		}
	}

	groups := f.table.Groups()
	complete := 0
	for _, g := range groups {
		if g.Complete() {
			complete++
		}
	}
	f.totals.SetGroups(len(groups), complete)

	return nil
}

func (f *scanner) walkFunc(path string, info os.FileInfo, inErr error) error {
	if info == nil {
		return fmt.Errorf("unable to stat: %s", path)
	}
	typ := info.Mode()
	base := filepath.Base(path)

	if base[0] == '.' && path != f.table.scanDir || inErr != nil {
		_, silent := silentSkip[base]
		if !silent {
			if inErr != nil {
				fmt.Printf("%s: %s\n", path, inErr)
				return nil
			}
			if f.options.Verbose {
				fmt.Printf("%s: skipping dot-prefix\n", f.table.Rel(path))
			}
		}
		if inErr == nil && typ.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	f.table.progress(path, true)

	if !f.options.Recursive && typ.IsDir() && path != f.table.scanDir {
		return filepath.SkipDir
	}

	if typ&os.ModeSymlink != 0 {
		if typ.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	group, current, err := f.table.find(path)
	if current != nil {
		f.totals.Files.Add(current)
	}

	switch err {
	case nil:
		f.totals.Bundles.Add(current)
		if f.options.Verbose {
			fmt.Printf("%s: %s -> %s\n", current.RelPath, current.Name.Kind(), group.Identifier())
		}
	case fileIsDuplicate:
		f.totals.Bundles.Add(current)
		f.totals.Duplicates.Add(current)
		fmt.Printf("%s == %s (%s)\n", current.DuplicateOf.RelPath, current.RelPath, humanize.IBytes(uint64(current.Size())))
	case fileIsUnmatched:
		f.totals.Unmatched.Add(current)
		if f.options.Verbose {
			fmt.Printf("%s: no bundle naming convention matched\n", current.RelPath)
		}
	case fileIsFiltered:
		f.totals.Filtered.Add(current)
		if f.options.Verbose {
			fmt.Printf("%s: %s filtered\n", current.RelPath, current.Name)
		}
	case fileIsSkipped:
		f.totals.Skipped.Add(current)
		if f.options.Verbose {
			fmt.Printf("%s: smaller than %d bytes\n", f.table.Rel(path), f.options.MinSize)
		}
	case fileIsIgnored:
	default:
		f.totals.Errors.Add(current)
		if current != nil {
			fmt.Printf("%s: %s\n", current.RelPath, err)
		} else {
			fmt.Println(err)
		}
	}

	return nil
}

var (
	// Used as a special status for dry-runs
	// Files skipped for other reasons should use fileIsSkipped
	// Unlike fileIsSkipped, noErrDryRun displays the filepath along with "skipped"
	noErrDryRun = errors.New("skipped")
)

func (f *scanner) Exit(code int) {
	f.Mutex.Destructive.Lock()
	os.Exit(code)
}

type totals struct {
	Started time.Time

	Files      total
	Bundles    total
	Duplicates total
	Unmatched  total
	Filtered   total

	Processed total
	Skipped   total
	Errors    total

	groups   uint64
	complete uint64
}

type total struct {
	count uint64
	size  uint64
}

func (t *totals) SetGroups(groups, complete int) {
	atomic.StoreUint64(&t.groups, uint64(groups))
	atomic.StoreUint64(&t.complete, uint64(complete))
}

func (t *totals) PrettyFormat(v verb) string {
	lines := []string{
		fmt.Sprintf("%s elapsed", t.End()),
	}

	if groups := atomic.LoadUint64(&t.groups); groups != 0 {
		lines = append(lines, fmt.Sprintf("%d groups (%d complete)", groups, atomic.LoadUint64(&t.complete)))
	}

	for _, x := range []struct {
		total
		suffix string
	}{
		{t.Files, "scanned"},
		{t.Bundles, "grouped"},
		{t.Duplicates, "duplicated"},
		{t.Unmatched, "unmatched"},
		{t.Filtered, "filtered"},
		{},
		{t.Processed, fmt.Sprintf("%s successfully", v.PastTense())},
		{t.Skipped, "skipped"},
		{t.Errors, "had errors"},
	} {
		if x.count != 0 {
			lines = append(lines, fmt.Sprintf("%s %s", x.String(), x.suffix))
		} else if x.suffix == "" {
			lines = append(lines, "")
		}
	}
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

func (t *total) String() string {
	count, size := t.Get()
	return fmt.Sprintf("%d files (%s)", count, humanize.IBytes(size))
}

func (t *totals) Start() {
	t.Started = time.Now()
}

func (t *totals) End() time.Duration {
	return time.Since(t.Started)
}

func (t *total) Add(r *bundleRecord) {
	atomic.AddUint64(&t.count, 1)
	if r != nil && r.Size() > 0 {
		atomic.AddUint64(&t.size, uint64(r.Size()))
	}
}

func (t *total) Get() (count, size uint64) {
	return atomic.LoadUint64(&t.count), atomic.LoadUint64(&t.size)
}
