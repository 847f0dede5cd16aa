package main

import (
	"bytes"
	"io"
	"os"
)

func equalFiles(r1, r2 *bundleRecord) bool {
	f1, err := os.Open(r1.FilePath)
	if err != nil {
		return false
	}
	defer f1.Close()

	f2, err := os.Open(r2.FilePath)
	if err != nil {
		return false
	}
	defer f2.Close()

	return equalReaders(f1, f2)
}

// equalReaders treats any read error other than EOF as a mismatch.
func equalReaders(f1, f2 io.Reader) bool {
	buf1 := make([]byte, 0xFFFF)
	buf2 := make([]byte, 0xFFFF)

	for {
		n1, err1 := io.ReadFull(f1, buf1)
		n2, err2 := io.ReadFull(f2, buf2)

		if n1 != n2 || !bytes.Equal(buf1[:n1], buf2[:n2]) {
			return false
		}

		end1 := err1 == io.EOF || err1 == io.ErrUnexpectedEOF
		end2 := err2 == io.EOF || err2 == io.ErrUnexpectedEOF
		if end1 || end2 {
			return end1 && end2
		}

		if err1 != nil || err2 != nil {
			return false
		}
	}
}
