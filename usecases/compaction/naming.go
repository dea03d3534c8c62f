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

package compaction

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/weaviate/blobopt/entities/diskio"
)

const (
	ShardExtension    = ".blob"
	ManifestExtension = ".manifest"
	TmpExtension      = ".tmp"
	DefaultPrefix     = "compacted"

	suffixLayout = "20060102150405"
)

// ShardPrefix picks the name prefix of the output shards from the input
// pattern, falling back to the name of the first input.
func ShardPrefix(pattern string, inputs []InputFile) string {
	if i := strings.Index(pattern, "*"); i >= 0 {
		if prefix := strings.TrimSuffix(pattern[:i], "."); usablePrefix(prefix) {
			return prefix
		}
	} else if strings.HasSuffix(pattern, ShardExtension) {
		if prefix := strings.TrimSuffix(pattern, ShardExtension); usablePrefix(prefix) {
			return prefix
		}
	}

	if len(inputs) > 0 {
		segments := strings.Split(inputs[0].Name, ".")
		prefix := segments[0]
		if len(segments) >= 3 {
			prefix = strings.Join(segments[:len(segments)-2], ".")
		}
		if usablePrefix(prefix) {
			return prefix
		}
	}

	return DefaultPrefix
}

func usablePrefix(prefix string) bool {
	return prefix != "" && !strings.ContainsAny(prefix, `*?\/`)
}

// SuffixGenerator hands out millisecond timestamps for output names. Suffixes
// increase strictly and never name a file that already exists in dir.
type SuffixGenerator struct {
	sync.Mutex
	dir  string
	now  func() time.Time
	last time.Time
}

func NewSuffixGenerator(dir string) *SuffixGenerator {
	return &SuffixGenerator{dir: dir, now: time.Now}
}

// Next returns a suffix for which <prefix>.<suffix><ext> and its .tmp
// sibling do not exist yet.
func (g *SuffixGenerator) Next(prefix, ext string) (string, error) {
	g.Lock()
	defer g.Unlock()

	t := g.now().UTC().Truncate(time.Millisecond)
	if !t.After(g.last) {
		t = g.last.Add(time.Millisecond)
	}

	for {
		suffix := FormatSuffix(t)
		name := filepath.Join(g.dir, prefix+"."+suffix+ext)
		taken, err := anyExists(name, name+TmpExtension)
		if err != nil {
			return "", err
		}
		if !taken {
			g.last = t
			return suffix, nil
		}
		t = t.Add(time.Millisecond)
	}
}

// FormatSuffix renders t as yyyyMMddHHmmssSSS.
func FormatSuffix(t time.Time) string {
	return fmt.Sprintf("%s%03d", t.Format(suffixLayout), t.Nanosecond()/int(time.Millisecond))
}

func anyExists(paths ...string) (bool, error) {
	for _, p := range paths {
		ok, err := diskio.FileExists(p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
