// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/brunoga/deep"

	"github.com/Azure/armlint/jsonpath"
)

// flatResource is one resource in the flattened view of the expanded
// template. Nested children appear alongside their parents, keyed by the
// slash-joined name and type chains from the root.
type flatResource struct {
	key          string
	nameChain    string
	typeChain    string
	path         string
	doc          map[string]any
	originalName any
}

// flatSet indexes every resource of the expanded template. Keys are
// compared case-insensitively; order preserves the depth-first discovery
// order of the expanded tree.
type flatSet struct {
	order []*flatResource
	byKey map[string]*flatResource
}

// flatten builds the flattened resource set from the expanded document.
// Duplicate keys fail fast rather than silently shadowing a resource.
func flatten(doc, original map[string]any, mappings *ResourceMappings) (*flatSet, error) {
	fs := &flatSet{byKey: make(map[string]*flatResource)}
	_, arr, ok := resourcesEntry(doc)
	if !ok {
		return fs, nil
	}
	if err := fs.add(arr, "resources", nil, nil, original, mappings); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *flatSet) add(arr []any, basePath string, nameChain, typeChain []string, original map[string]any, mappings *ResourceMappings) error {
	for i, e := range arr {
		doc, ok := asObject(e)
		if !ok {
			continue
		}
		p := fmt.Sprintf("%s[%d]", basePath, i)
		name := foldString(doc, "name")
		typ := foldString(doc, "type")
		var names, types []string
		if len(typeChain) > 0 && strings.Contains(typ, "/") {
			// nested children may carry the fully qualified type and name
			// instead of the segment relative to their parent
			names = []string{name}
			types = []string{typ}
		} else {
			names = make([]string, 0, len(nameChain)+1)
			names = append(names, nameChain...)
			names = append(names, name)
			types = make([]string, 0, len(typeChain)+1)
			types = append(types, typeChain...)
			types = append(types, typ)
		}
		fr := &flatResource{
			nameChain:    strings.Join(names, "/"),
			typeChain:    strings.Join(types, "/"),
			path:         p,
			doc:          doc,
			originalName: originalNameAt(original, mappings, p),
		}
		fr.key = fr.nameChain + " " + fr.typeChain
		lk := strings.ToLower(fr.key)
		if _, dup := fs.byKey[lk]; dup {
			return NewErrDuplicateResource(fr.key)
		}
		fs.byKey[lk] = fr
		fs.order = append(fs.order, fr)
		if _, children, ok := resourcesEntry(doc); ok {
			if err := fs.add(children, p+".resources", names, types, original, mappings); err != nil {
				return err
			}
		}
	}
	return nil
}

// originalNameAt returns the name value the source template declares for
// the resource at the given expanded path, before any expression rewriting.
func originalNameAt(original map[string]any, mappings *ResourceMappings, expandedPath string) any {
	orig := mappings.ToOriginal(expandedPath)
	p, err := jsonpath.Parse(orig + ".name")
	if err != nil {
		return nil
	}
	matches := jsonpath.Resolve(original, p)
	if len(matches) != 1 || matches[0].IsMissing() {
		return nil
	}
	return matches[0].Value
}

// attachDependencies appends a copy of each resource below every resource
// it declares a dependsOn edge to, so rules scoped to a parent type can see
// the resources deployed with it. The flattened set is walked as it stood
// before any attachment.
func attachDependencies(fs *flatSet, mappings *ResourceMappings, logger *slog.Logger) {
	snapshot := make([]*flatResource, len(fs.order))
	copy(snapshot, fs.order)
	for _, fr := range snapshot {
		raw, ok := foldGet(fr.doc, "dependsOn")
		if !ok {
			continue
		}
		deps, ok := asArray(raw)
		if !ok {
			continue
		}
		for _, d := range deps {
			dep, ok := d.(string)
			if !ok || dep == "" || dep == NotParsed {
				logger.Debug("skipping unresolvable dependsOn entry", "resource", fr.key)
				continue
			}
			parent := fs.lookupDependency(dep, logger)
			if parent == nil || parent == fr {
				continue
			}
			attachChild(parent, fr, mappings, logger)
		}
	}
}

// lookupDependency finds the flattened resource a dependsOn entry names,
// either a full resource id or a bare (possibly slash-chained) name.
func (fs *flatSet) lookupDependency(dep string, logger *slog.Logger) *flatResource {
	if strings.HasPrefix(dep, "/") {
		key, err := dependencyKeyFromID(dep)
		if err != nil {
			logger.Warn("unparseable resource id in dependsOn", "id", dep, "reason", err)
			return nil
		}
		fr, ok := fs.byKey[strings.ToLower(key)]
		if !ok {
			logger.Warn("dependsOn target not found in template", "id", dep)
			return nil
		}
		return fr
	}
	prefix := strings.ToLower(dep) + " "
	var found *flatResource
	for _, fr := range fs.order {
		if !strings.HasPrefix(strings.ToLower(fr.key), prefix) {
			continue
		}
		if found != nil {
			logger.Warn("ambiguous dependsOn name, skipping attachment", "name", dep)
			return nil
		}
		found = fr
	}
	if found == nil {
		logger.Warn("dependsOn target not found in template", "name", dep)
	}
	return found
}

// dependencyKeyFromID reduces a full ARM resource id to the flattened
// lookup key of the resource it addresses.
func dependencyKeyFromID(id string) (string, error) {
	rid, err := arm.ParseResourceID(id)
	if err != nil {
		return "", err
	}
	var names []string
	for r := rid; r != nil; r = r.Parent {
		if isScopeRootType(r.ResourceType.String()) {
			break
		}
		names = append([]string{r.Name}, names...)
	}
	return strings.Join(names, "/") + " " + rid.ResourceType.String(), nil
}

func isScopeRootType(rt string) bool {
	switch {
	case strings.EqualFold(rt, arm.ResourceGroupResourceType.String()),
		strings.EqualFold(rt, arm.SubscriptionResourceType.String()),
		strings.EqualFold(rt, arm.TenantResourceType.String()):
		return true
	}
	return false
}

func attachChild(parent, child *flatResource, mappings *ResourceMappings, logger *slog.Logger) {
	cp := deep.MustCopy(child.doc)
	key, arr, ok := resourcesEntry(parent.doc)
	if !ok {
		key, arr = "resources", nil
	}
	idx := len(arr)
	parent.doc[key] = append(arr, any(cp))
	newPath := fmt.Sprintf("%s.resources[%d]", parent.path, idx)
	if err := mappings.Add(newPath, mappings.ToOriginal(child.path)); err != nil {
		logger.Warn("could not record mapping for attached dependency", "path", newPath, "reason", err)
	}
}
