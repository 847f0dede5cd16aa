package main

import (
	"io"
	"os"
)

// copyFile copies content, permissions and modification time.
// dst must not exist, like os.Link.
func copyFile(src, dst string) error {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()

	st, err := sf.Stat()
	if err != nil {
		return err
	}

	df, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, st.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(df, sf); err != nil {
		df.Close()
		return err
	}
	if err = df.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, st.ModTime(), st.ModTime())
}
