// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"fmt"
	"strings"

	"github.com/brunoga/deep"
)

// resourceCopy is the object form of copy carried by a resource.
type resourceCopy struct {
	name  string
	count any
}

func resourceCopyDescriptor(obj map[string]any) (resourceCopy, bool) {
	raw, ok := foldGet(obj, "copy")
	if !ok {
		return resourceCopy{}, false
	}
	co, ok := asObject(raw)
	if !ok {
		return resourceCopy{}, false
	}
	name := foldString(co, "name")
	count, hasCount := foldGet(co, "count")
	if name == "" || !hasCount {
		return resourceCopy{}, false
	}
	return resourceCopy{name: name, count: count}, true
}

// expandResourceCopies replaces each copy-carrying resource with one
// instance per iteration and records an expanded-to-original path mapping
// for every element of the new array, copied or not. frames collects the
// copy loop ordinals active at each expanded path so later evaluation can
// answer copyIndex().
func (ev *evaluator) expandResourceCopies(arr []any, origBase, expBase string, parentFrames []copyFrame, frames map[string][]copyFrame, mappings *ResourceMappings) ([]any, error) {
	out := make([]any, 0, len(arr))
	for i, e := range arr {
		origPath := fmt.Sprintf("%s[%d]", origBase, i)
		doc, ok := asObject(e)
		if !ok {
			expPath := fmt.Sprintf("%s[%d]", expBase, len(out))
			if err := mappings.Add(expPath, origPath); err != nil {
				return nil, err
			}
			frames[expPath] = parentFrames
			out = append(out, e)
			continue
		}
		desc, hasCopy := resourceCopyDescriptor(doc)
		if !hasCopy {
			expPath := fmt.Sprintf("%s[%d]", expBase, len(out))
			if err := mappings.Add(expPath, origPath); err != nil {
				return nil, err
			}
			frames[expPath] = parentFrames
			if key, children, ok := resourcesEntry(doc); ok {
				expanded, err := ev.expandResourceCopies(children, origPath+".resources", expPath+".resources", parentFrames, frames, mappings)
				if err != nil {
					return nil, err
				}
				doc[key] = expanded
			}
			out = append(out, doc)
			continue
		}
		ev.copyStack = parentFrames
		cv, err := ev.walk(desc.count, ev.scope, !ev.strict)
		ev.copyStack = nil
		if err != nil {
			return nil, err
		}
		n, countKnown := toCount(cv)
		if !countKnown {
			ev.logger.Warn("copy count not statically resolvable, keeping one unexpanded instance", "loop", desc.name)
			expPath := fmt.Sprintf("%s[%d]", expBase, len(out))
			if err := mappings.Add(expPath, origPath); err != nil {
				return nil, err
			}
			frames[expPath] = parentFrames
			if key, children, ok := resourcesEntry(doc); ok {
				expanded, err := ev.expandResourceCopies(children, origPath+".resources", expPath+".resources", parentFrames, frames, mappings)
				if err != nil {
					return nil, err
				}
				doc[key] = expanded
			}
			out = append(out, doc)
			continue
		}
		if n > maxCopyCount {
			ev.logger.Warn("copy count exceeds limit, clamping", "loop", desc.name, "count", n)
			n = maxCopyCount
		}
		for ci := 0; ci < n; ci++ {
			inst := deep.MustCopy(doc)
			deleteFold(inst, "copy")
			expPath := fmt.Sprintf("%s[%d]", expBase, len(out))
			if err := mappings.Add(expPath, origPath); err != nil {
				return nil, err
			}
			instFrames := make([]copyFrame, 0, len(parentFrames)+1)
			instFrames = append(instFrames, parentFrames...)
			instFrames = append(instFrames, copyFrame{name: desc.name, index: ci})
			frames[expPath] = instFrames
			if key, children, ok := resourcesEntry(inst); ok {
				expanded, err := ev.expandResourceCopies(children, origPath+".resources", expPath+".resources", instFrames, frames, mappings)
				if err != nil {
					return nil, err
				}
				inst[key] = expanded
			}
			out = append(out, inst)
		}
	}
	return out, nil
}

func deleteFold(obj map[string]any, key string) {
	for k := range obj {
		if strings.EqualFold(k, key) {
			delete(obj, k)
		}
	}
}
