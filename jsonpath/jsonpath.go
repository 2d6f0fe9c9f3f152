// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package jsonpath parses and resolves dot-and-bracket property paths
// (e.g. `properties.siteConfig.cors.allowedOrigins[0]`) against decoded
// JSON documents. The wildcard index `[*]` fans out across every element
// of an array, producing one result per element.
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is a single step of a parsed path.
type Segment struct {
	// Key is the object member to descend into. It is empty for bracket segments.
	Key string
	// Index is the array element to descend into when IsIndex is set.
	Index int
	// IsIndex marks a concrete array index segment.
	IsIndex bool
	// Wildcard marks a `[*]` segment, which fans out across every array element.
	Wildcard bool
}

// Path is a parsed property path. The zero value addresses the document root.
type Path struct {
	raw      string
	segments []Segment
}

// Parse parses a dot-and-bracket path string.
// An empty string yields a path addressing the document root.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, nil
	}
	var segs []Segment
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '.':
			if len(segs) == 0 {
				return Path{}, NewErrInvalidPath(raw, "leading '.'")
			}
			i++
			if i >= len(raw) || raw[i] == '.' || raw[i] == '[' {
				return Path{}, NewErrInvalidPath(raw, "empty segment after '.'")
			}
			start := i
			for i < len(raw) && raw[i] != '.' && raw[i] != '[' {
				i++
			}
			segs = append(segs, Segment{Key: raw[start:i]})
		case '[':
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return Path{}, NewErrInvalidPath(raw, "unterminated '['")
			}
			inner := raw[i+1 : i+end]
			if inner == "*" {
				segs = append(segs, Segment{Wildcard: true})
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil || idx < 0 {
					return Path{}, NewErrInvalidPath(raw, fmt.Sprintf("invalid index %q", inner))
				}
				segs = append(segs, Segment{Index: idx, IsIndex: true})
			}
			i += end + 1
		default:
			if len(segs) != 0 {
				return Path{}, NewErrInvalidPath(raw, fmt.Sprintf("unexpected character %q, expected '.' or '['", raw[i]))
			}
			start := i
			for i < len(raw) && raw[i] != '.' && raw[i] != '[' {
				i++
			}
			segs = append(segs, Segment{Key: raw[start:i]})
		}
	}
	return Path{raw: raw, segments: segs}, nil
}

// MustParse is Parse that panics on error. Use for compile-time constant paths.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the path as authored.
func (p Path) String() string {
	return p.raw
}

// Segments returns the parsed segments of the path.
func (p Path) Segments() []Segment {
	return p.segments
}

// IsRoot reports whether the path addresses the document root.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// HasWildcard reports whether any segment of the path is `[*]`.
func (p Path) HasWildcard() bool {
	for _, s := range p.segments {
		if s.Wildcard {
			return true
		}
	}
	return false
}

// Join concatenates a base path and a relative path, inserting a '.' unless
// the relative path begins with a bracket segment.
func Join(base, rel string) string {
	switch {
	case base == "":
		return rel
	case rel == "":
		return base
	case rel[0] == '[':
		return base + rel
	default:
		return base + "." + rel
	}
}
