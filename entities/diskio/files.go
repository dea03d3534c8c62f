//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package diskio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

var ErrFreeSpaceUnsupported = errors.New("free space check not supported on this platform")

// FileInfo is a regular file found by ListFiles.
type FileInfo struct {
	Path string
	Name string
	Size int64
}

func FileExists(file string) (bool, error) {
	_, err := os.Stat(file)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func IsDirEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}

	return false, err
}

// RemoveDirIfEmpty deletes dir when nothing is left in it. It reports whether
// the directory is gone.
func RemoveDirIfEmpty(dir string) (bool, error) {
	empty, err := IsDirEmpty(dir)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil || !empty {
		return false, err
	}
	if err := os.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}

func Fsync(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Sync()
}

// ListFiles returns the regular files directly inside dirPath that match, in
// directory enumeration order. Symlinks to regular files are followed and
// reported with the size of their target. A nil match accepts every file.
func ListFiles(dirPath string, match func(name string) bool) ([]FileInfo, error) {
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	// Read all entries at once including file sizes
	fileInfos, err := dir.Readdir(-1)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(fileInfos))
	for _, info := range fileInfos {
		name := info.Name()
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(filepath.Join(dirPath, name))
			if err != nil {
				// dangling link
				continue
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		files = append(files, FileInfo{
			Path: filepath.Join(dirPath, name),
			Name: name,
			Size: info.Size(),
		})
	}

	return files, nil
}
