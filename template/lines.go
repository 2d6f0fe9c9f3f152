// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// LineIndex maps template paths to 1-based line numbers in the source text.
// Unknown paths resolve to 0.
type LineIndex struct {
	lines map[string]int
}

type lineFrame struct {
	path   string
	isArr  bool
	index  int
	key    string
	hasKey bool
}

// NewLineIndex tokenizes the raw JSON once and records the line on which
// each path's value starts.
func NewLineIndex(data []byte) (*LineIndex, error) {
	newlines := make([]int, 0, 256)
	for i, b := range data {
		if b == '\n' {
			newlines = append(newlines, i)
		}
	}
	lineAt := func(offset int64) int {
		return sort.SearchInts(newlines, int(offset)) + 1
	}

	idx := &LineIndex{lines: make(map[string]int)}
	record := func(path string, offset int64) {
		if _, seen := idx.lines[path]; !seen {
			idx.lines[path] = lineAt(offset)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []lineFrame
	valuePath := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.isArr {
			return fmt.Sprintf("%s[%d]", top.path, top.index)
		}
		return joinKey(top.path, top.key)
	}
	// the parent frame advances as soon as a value starts so that the next
	// sibling computes the right path
	advance := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.isArr {
			top.index++
			return
		}
		top.hasKey = false
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				p := valuePath()
				record(p, dec.InputOffset())
				advance()
				stack = append(stack, lineFrame{path: p, isArr: t == '['})
			default:
				stack = stack[:len(stack)-1]
			}
		case string:
			if len(stack) > 0 && !stack[len(stack)-1].isArr && !stack[len(stack)-1].hasKey {
				top := &stack[len(stack)-1]
				top.key = t
				top.hasKey = true
				continue
			}
			record(valuePath(), dec.InputOffset())
			advance()
		default:
			record(valuePath(), dec.InputOffset())
			advance()
		}
	}
	return idx, nil
}

// Line returns the 1-based line for path, or 0 when the path was not seen.
func (li *LineIndex) Line(path string) int {
	if li == nil {
		return 0
	}
	return li.lines[path]
}

func joinKey(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// parentPath strips the last path segment: "a.b[3]" -> "a.b", "a.b" -> "a",
// "resources[2]" -> "resources", "a" -> "".
func parentPath(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasSuffix(p, "]") {
		if i := strings.LastIndex(p, "["); i >= 0 {
			return p[:i]
		}
		return ""
	}
	if i := strings.LastIndex(p, "."); i >= 0 {
		return p[:i]
	}
	return ""
}
