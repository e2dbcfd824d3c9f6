package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/nguyentantai21042004/clipnorm/internal/failure"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// Discover walks root, collects .mp4/.mov files (case-insensitive) and
// returns them sorted by path for a deterministic processing order. Each
// source's sibling caption is resolved here, once. A missing or unreadable
// root is a discovery failure.
func Discover(root string) ([]media.SourceVideo, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, failure.New(failure.KindDiscovery, root, err)
	}
	if !fi.IsDir() {
		return nil, failure.New(failure.KindDiscovery, root, fmt.Errorf("not a directory"))
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if media.IsVideo(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, failure.New(failure.KindDiscovery, root, err)
	}
	sort.Strings(paths)

	sources := make([]media.SourceVideo, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, Resolve(p))
	}
	return sources, nil
}

// Resolve builds the SourceVideo for path, recording its sibling caption
// when one exists as a regular file.
func Resolve(path string) media.SourceVideo {
	caption := media.CaptionSibling(path)
	if fi, err := os.Stat(caption); err != nil || !fi.Mode().IsRegular() {
		caption = ""
	}
	return media.NewSourceVideo(path, caption)
}
