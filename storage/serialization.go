// Copyright 2025 Casavia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/casavia/rentmatch/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// The serializers below follow the mus Marshal/Unmarshal/Size convention
// by hand. The persisted records are few and flat, so hand-rolled
// composition over the varint/raw/ord primitives stays readable and
// avoids a code generation step. Field order is the format; never
// reorder fields without a migration.

// MarshalCacheEntry serializes a CacheEntry to bytes.
func MarshalCacheEntry(entry *core.CacheEntry) []byte {
	buf := make([]byte, sizeCacheEntry(entry))
	marshalCacheEntry(entry, buf)
	return buf
}

// UnmarshalCacheEntry deserializes a CacheEntry from bytes.
func UnmarshalCacheEntry(data []byte) (*core.CacheEntry, error) {
	entry, _, err := unmarshalCacheEntry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: cache entry: %w", ErrSerializationFailed, err)
	}
	return entry, nil
}

// MarshalListing serializes a Listing to bytes.
func MarshalListing(listing *core.Listing) []byte {
	buf := make([]byte, sizeListing(listing))
	marshalListing(listing, buf)
	return buf
}

// UnmarshalListing deserializes a Listing from bytes.
func UnmarshalListing(data []byte) (*core.Listing, error) {
	listing, _, err := unmarshalListing(data)
	if err != nil {
		return nil, fmt.Errorf("%w: listing: %w", ErrSerializationFailed, err)
	}
	return listing, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(m *core.Manifest) []byte {
	buf := make([]byte, sizeManifest(m))
	marshalManifest(m, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	m, _, err := unmarshalManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return m, nil
}

// CacheEntry: Failed, Vector

func marshalCacheEntry(entry *core.CacheEntry, bs []byte) (n int) {
	n = ord.MarshalBool(entry.Failed, bs)
	n += marshalVector(entry.Vector, bs[n:])
	return n
}

func unmarshalCacheEntry(bs []byte) (entry *core.CacheEntry, n int, err error) {
	failed, n, err := ord.UnmarshalBool(bs)
	if err != nil {
		return nil, n, err
	}

	vector, vn, err := unmarshalVector(bs[n:])
	n += vn
	if err != nil {
		return nil, n, err
	}

	return &core.CacheEntry{Failed: failed, Vector: vector}, n, nil
}

func sizeCacheEntry(entry *core.CacheEntry) int {
	return ord.SizeBool(entry.Failed) + sizeVector(entry.Vector)
}

// Listing: Id, URL, Platform, Title, Description, Price, Rooms,
// Location, ImageURLs, TextVector, ImageVector

func marshalListing(listing *core.Listing, bs []byte) (n int) {
	n = varint.MarshalUint64(uint64(listing.Id), bs)
	n += marshalString(listing.URL, bs[n:])
	n += marshalString(listing.Platform, bs[n:])
	n += marshalString(listing.Title, bs[n:])
	n += marshalString(listing.Description, bs[n:])
	n += raw.MarshalFloat64(listing.Price, bs[n:])
	n += varint.MarshalInt(listing.Rooms, bs[n:])
	n += marshalLocation(listing.Location, bs[n:])
	n += marshalStringSlice(listing.ImageURLs, bs[n:])
	n += marshalVector(listing.TextVector, bs[n:])
	n += marshalVector(listing.ImageVector, bs[n:])
	return n
}

func unmarshalListing(bs []byte) (listing *core.Listing, n int, err error) {
	listing = &core.Listing{}

	id, n, err := varint.UnmarshalUint64(bs)
	if err != nil {
		return nil, n, err
	}
	listing.Id = core.ID(id)

	var fn int
	listing.URL, fn, err = unmarshalString(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.Platform, fn, err = unmarshalString(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.Title, fn, err = unmarshalString(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.Description, fn, err = unmarshalString(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.Price, fn, err = raw.UnmarshalFloat64(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.Rooms, fn, err = varint.UnmarshalInt(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.Location, fn, err = unmarshalLocation(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.ImageURLs, fn, err = unmarshalStringSlice(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.TextVector, fn, err = unmarshalVector(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	listing.ImageVector, fn, err = unmarshalVector(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	return listing, n, nil
}

func sizeListing(listing *core.Listing) int {
	return varint.SizeUint64(uint64(listing.Id)) +
		sizeString(listing.URL) +
		sizeString(listing.Platform) +
		sizeString(listing.Title) +
		sizeString(listing.Description) +
		raw.SizeFloat64(listing.Price) +
		varint.SizeInt(listing.Rooms) +
		sizeLocation(listing.Location) +
		sizeStringSlice(listing.ImageURLs) +
		sizeVector(listing.TextVector) +
		sizeVector(listing.ImageVector)
}

// Manifest: Count, TextDims, ImageDims, BuiltAt (micros)

func marshalManifest(m *core.Manifest, bs []byte) (n int) {
	n = varint.MarshalInt(m.Count, bs)
	n += varint.MarshalInt(m.TextDims, bs[n:])
	n += varint.MarshalInt(m.ImageDims, bs[n:])
	n += varint.MarshalInt64(m.BuiltAt.UnixMicro(), bs[n:])
	return n
}

func unmarshalManifest(bs []byte) (m *core.Manifest, n int, err error) {
	m = &core.Manifest{}

	m.Count, n, err = varint.UnmarshalInt(bs)
	if err != nil {
		return nil, n, err
	}

	var fn int
	m.TextDims, fn, err = varint.UnmarshalInt(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	m.ImageDims, fn, err = varint.UnmarshalInt(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}

	var micros int64
	micros, fn, err = varint.UnmarshalInt64(bs[n:])
	n += fn
	if err != nil {
		return nil, n, err
	}
	m.BuiltAt = time.UnixMicro(micros).UTC()

	return m, n, nil
}

func sizeManifest(m *core.Manifest) int {
	return varint.SizeInt(m.Count) +
		varint.SizeInt(m.TextDims) +
		varint.SizeInt(m.ImageDims) +
		varint.SizeInt64(m.BuiltAt.UnixMicro())
}

// Location: Kind, Name, Lat, Lon (all fields, regardless of Kind)

func marshalLocation(l core.Location, bs []byte) (n int) {
	n = varint.MarshalInt(int(l.Kind), bs)
	n += marshalString(l.Name, bs[n:])
	n += raw.MarshalFloat64(l.Lat, bs[n:])
	n += raw.MarshalFloat64(l.Lon, bs[n:])
	return n
}

func unmarshalLocation(bs []byte) (l core.Location, n int, err error) {
	kind, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return l, n, err
	}
	if kind < int(core.LocationNone) || kind > int(core.LocationCoords) {
		return l, n, fmt.Errorf("invalid location kind %d", kind)
	}
	l.Kind = core.LocationKind(kind)

	var fn int
	l.Name, fn, err = unmarshalString(bs[n:])
	n += fn
	if err != nil {
		return l, n, err
	}

	l.Lat, fn, err = raw.UnmarshalFloat64(bs[n:])
	n += fn
	if err != nil {
		return l, n, err
	}

	l.Lon, fn, err = raw.UnmarshalFloat64(bs[n:])
	n += fn
	if err != nil {
		return l, n, err
	}

	return l, n, nil
}

func sizeLocation(l core.Location) int {
	return varint.SizeInt(int(l.Kind)) +
		sizeString(l.Name) +
		raw.SizeFloat64(l.Lat) +
		raw.SizeFloat64(l.Lon)
}

// Primitive helpers shared by the serializers above.

func marshalString(v string, bs []byte) (n int) {
	n = varint.MarshalInt(len(v), bs)
	n += copy(bs[n:], v)
	return n
}

func unmarshalString(bs []byte) (v string, n int, err error) {
	length, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return "", n, err
	}
	if length < 0 || length > len(bs)-n {
		return "", n, ErrTruncatedData
	}
	return string(bs[n : n+length]), n + length, nil
}

func sizeString(v string) int {
	return varint.SizeInt(len(v)) + len(v)
}

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.MarshalInt(len(v), bs)
	for _, s := range v {
		n += marshalString(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}

	v = make([]string, length)
	for i := range v {
		var sn int
		v[i], sn, err = unmarshalString(bs[n:])
		n += sn
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeStringSlice(v []string) int {
	size := varint.SizeInt(len(v))
	for _, s := range v {
		size += sizeString(s)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.MarshalInt(len(v), bs)
	for _, f := range v {
		n += raw.MarshalFloat32(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.UnmarshalInt(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length*4 > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}

	v = make([]float32, length)
	for i := range v {
		var fn int
		v[i], fn, err = raw.UnmarshalFloat32(bs[n:])
		n += fn
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	size := varint.SizeInt(len(v))
	for _, f := range v {
		size += raw.SizeFloat32(f)
	}
	return size
}
