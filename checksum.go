package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

const ChecksumBlockSize = 16

// 32 bytes of random hash key
var hashKey []byte

func init() {
	hashKey = make([]byte, 32)
	if _, err := rand.Read(hashKey); err != nil {
		panic(err)
	}

	h, err := highwayhash.New128(hashKey)
	if err != nil {
		panic(err)
	}

	if h.Size() != ChecksumBlockSize {
		panic("unexpected block size")
	}
}

// Checksum hashes r's content once; later calls return the cached result.
func (t *fileTable) Checksum(r *bundleRecord) error {
	if r.HasChecksum {
		return nil
	}

	if r.FailedChecksum != nil {
		return r.FailedChecksum
	}

	t.progress(r.RelPath, false)

	f, err := os.Open(r.FilePath)
	if err != nil {
		r.FailedChecksum = err
		fmt.Printf("%s: %s\n", r.RelPath, err)
		return err
	}
	defer f.Close()

	b, err := hwhChecksum(f)
	if err != nil {
		r.FailedChecksum = fmt.Errorf("checksum: %w", err)
		fmt.Printf("%s: %s\n", r.RelPath, err)
		return r.FailedChecksum
	}

	r.Checksum.size = r.Size()
	copy(r.Checksum.hash[:], b)
	r.HasChecksum = true
	return nil
}

func hwhChecksum(r io.Reader) ([]byte, error) {
	h, err := highwayhash.New128(hashKey)
	if err != nil {
		return nil, err
	}

	_, err = io.Copy(h, r)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// findDuplicate returns the first distinct member of g with the same kind and
// content as current, or nil.
func (t *fileTable) findDuplicate(g *bundleGroup, current *bundleRecord) *bundleRecord {
	var candidates []*bundleRecord
	for _, other := range g.Distinct() {
		if other.Name.Kind() == current.Name.Kind() && other.Size() == current.Size() {
			candidates = append(candidates, other)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	if err := t.Checksum(current); err != nil {
		return nil
	}

	for _, other := range candidates {
		if os.SameFile(current.FileInfo, other.FileInfo) {
			return other
		}
		if err := t.Checksum(other); err != nil {
			continue
		}
		if other.Checksum == current.Checksum && equalFiles(current, other) {
			return other
		}
	}
	return nil
}
