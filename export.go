package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"syscall"
)

// Export places every distinct member of each listed group under
// options.Output/<group identifier>/ using the selected verb.
func (f *scanner) Export() error {
	v := f.options.Verb()
	if v == VerbNone {
		return nil
	}

	out, err := filepath.Abs(f.options.Output)
	if err != nil {
		return fmt.Errorf("unable to resolve \"%s\": %w", f.options.Output, err)
	}

	for _, g := range f.table.Groups() {
		dir := filepath.Join(out, g.Identifier())
		for _, r := range g.Distinct() {
			err := f.exportRecord(v, r, dir)
			switch {
			case err == nil:
				fmt.Printf(" success\n")
				f.totals.Processed.Add(r)
			case err == noErrDryRun:
				fmt.Printf(" skipped\n")
				f.totals.Skipped.Add(r)
			case err == fileIsSkipped:
				fmt.Printf(" exists\n")
				f.totals.Skipped.Add(r)
			default:
				fmt.Printf(" %s\n", err)
				f.totals.Errors.Add(r)
			}
		}
	}
	return nil
}

func (f *scanner) exportRecord(v verb, r *bundleRecord, dir string) error {
	dst := filepath.Join(dir, filepath.Base(r.FilePath))
	fmt.Printf("  %s( %s => %s )", v, r.RelPath, f.table.Rel(dst))

	if st, err := os.Stat(dst); err == nil {
		if !f.options.Overwrite || os.SameFile(st, r.FileInfo) {
			return fileIsSkipped
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if f.options.DryRun {
		return noErrDryRun
	}

	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}

	a := copyFile
	if v == VerbLink {
		a = os.Link
	}

	f.Mutex.Destructive.RLock()
	defer f.Mutex.Destructive.RUnlock()

	for retry := 0; retry < 3; retry++ {
		tmp, err := tempName(dir)
		if err != nil {
			return err
		}

		if err = a(r.FilePath, tmp); err != nil {
			if errors.Is(err, syscall.EEXIST) {
				continue
			}
			os.Remove(tmp)
			return fmt.Errorf("%s: %w", f.table.Rel(tmp), err)
		}

		if err = os.Rename(tmp, dst); err != nil {
			os.Remove(tmp)
		}
		return err
	}

	return fmt.Errorf("%s: unable to reserve a temporary name", f.table.Rel(dst))
}

func tempName(dir string) (string, error) {
	f, err := ioutil.TempFile(dir, ".bundlegroup-")
	if err != nil {
		return "", err
	}
	name := f.Name()
	defer os.Remove(name)
	defer f.Close()
	return name, nil
}
