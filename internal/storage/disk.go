// Package storage reports on the vector store: its on-disk footprint and collection status.
package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Usage is the on-disk footprint of one or more paths.
type Usage struct {
	Bytes int64 `json:"bytes"`
	Files int   `json:"files"`
}

// DiskUsage sums file sizes under the given paths. Each path may be a file or a directory
// (walked recursively). Missing and empty paths contribute nothing; walk errors are returned.
func DiskUsage(paths ...string) (Usage, error) {
	var u Usage
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Usage{}, err
		}
		if !info.IsDir() {
			u.Bytes += info.Size()
			u.Files++
			continue
		}
		err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			u.Bytes += fi.Size()
			u.Files++
			return nil
		})
		if err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}

// DiskUsageBytes returns only the byte total of DiskUsage.
func DiskUsageBytes(paths ...string) (int64, error) {
	u, err := DiskUsage(paths...)
	return u.Bytes, err
}
