package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/josephvusich/bundlegroup/report"
)

func writeReport(path string, groups []*bundleGroup, unmatched []string) error {
	if path == "" {
		return nil
	}

	fmt.Printf("Writing %s...\n", path)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(newReport(groups, unmatched))
}

func newReport(groups []*bundleGroup, unmatched []string) *report.Report {
	rep := &report.Report{
		Groups:    make([]report.Group, 0, len(groups)),
		Unmatched: unmatched,
	}

	for _, g := range groups {
		rg := report.Group{
			Identifier: g.Identifier(),
			Character:  g.Name.CharacterName(),
			Variant:    g.Name.VariantID(),
			Complete:   g.Complete(),
			Bundles:    make([]report.Bundle, 0, len(g.Members)),
		}
		for _, k := range g.Missing() {
			rg.Missing = append(rg.Missing, string(k))
		}
		for _, r := range g.Members {
			b := report.Bundle{
				Path: r.RelPath,
				Kind: string(r.Name.Kind()),
				Size: r.Size(),
			}
			if r.HasChecksum {
				b.Checksum = fmt.Sprintf("%x", r.Checksum.hash)
			}
			if r.DuplicateOf != nil {
				b.DuplicateOf = r.DuplicateOf.RelPath
			}
			rg.Bundles = append(rg.Bundles, b)
		}
		rep.Groups = append(rep.Groups, rg)
	}
	return rep
}
