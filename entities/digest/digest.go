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

// Package digest derives the content keys records are sorted and
// deduplicated by. Two records with the same key are treated as the same
// record, so the width of the digest bounds the collision risk.
package digest

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

const (
	Murmur3  = "murmur3-128"
	XXHash64 = "xxhash64"
	// Legacy31 reproduces the 32-bit base-31 rolling hash of the original
	// BLOB optimizer. Distinct records collide noticeably often with it.
	Legacy31 = "legacy31"

	Default = Murmur3
)

// Key is a 128-bit digest. Narrower digests leave Hi at zero.
type Key struct {
	Hi, Lo uint64
}

func (k Key) Compare(other Key) int {
	switch {
	case k.Hi < other.Hi:
		return -1
	case k.Hi > other.Hi:
		return 1
	case k.Lo < other.Lo:
		return -1
	case k.Lo > other.Lo:
		return 1
	default:
		return 0
	}
}

func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

// Bytes returns the big-endian encoding, which sorts like Compare.
func (k Key) Bytes() []byte {
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], k.Hi)
	binary.BigEndian.PutUint64(out[8:], k.Lo)
	return out
}

func (k Key) String() string {
	return hex.EncodeToString(k.Bytes())
}

type Digester interface {
	Name() string
	Sum(record []byte) Key
}

type murmurDigester struct{}

func (murmurDigester) Name() string { return Murmur3 }

func (murmurDigester) Sum(record []byte) Key {
	hi, lo := murmur3.Sum128(record)
	return Key{Hi: hi, Lo: lo}
}

type xxhashDigester struct{}

func (xxhashDigester) Name() string { return XXHash64 }

func (xxhashDigester) Sum(record []byte) Key {
	return Key{Lo: xxhash.Sum64(record)}
}

type legacyDigester struct{}

func (legacyDigester) Name() string { return Legacy31 }

func (legacyDigester) Sum(record []byte) Key {
	var h int32
	for _, b := range record {
		h = h*31 + int32(b)
	}
	// order like the signed comparison of the original tool
	return Key{Lo: uint64(uint32(h) ^ 0x80000000)}
}

var digesters = map[string]Digester{
	Murmur3:  murmurDigester{},
	XXHash64: xxhashDigester{},
	Legacy31: legacyDigester{},
}

// New returns the digester registered under name. An empty name selects the
// default.
func New(name string) (Digester, error) {
	if name == "" {
		name = Default
	}
	d, ok := digesters[name]
	if !ok {
		return nil, fmt.Errorf("unknown digest %q, expected one of %v", name, Names())
	}
	return d, nil
}

func Names() []string {
	names := make([]string, 0, len(digesters))
	for name := range digesters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
