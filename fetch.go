// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armlint

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/Azure/armlint/internal/environment"
	"github.com/Azure/armlint/internal/processor"
	"github.com/hashicorp/go-getter/v2"
)

// FetchRuleLibraryMember fetches a member of the central armlint rule
// library, e.g. path "appservice" at tag "2025.07.0". The base git URL can
// be overridden with the `ARMLINT_LIBRARY_GIT_URL` environment variable.
func FetchRuleLibraryMember(ctx context.Context, destinationDirectory, path, ref string) (fs.FS, error) {
	q := url.Values{}
	q.Add("depth", "1")
	q.Add("ref", ref)
	src := environment.RuleLibraryGitUrl() + "//" + path + "?" + q.Encode()
	return FetchLibraryByGetterString(ctx, src, destinationDirectory)
}

// FetchLibraryByGetterString fetches a library from a go-getter URL into a
// directory beneath the armlint cache directory (`ARMLINT_DIR`, default
// `.armlint`). Any previous contents of the destination are removed first.
func FetchLibraryByGetterString(ctx context.Context, getterString, destinationDirectory string) (fs.FS, error) {
	dst := filepath.Join(environment.ArmLintDir(), destinationDirectory)
	if err := os.RemoveAll(dst); err != nil {
		return nil, fmt.Errorf("FetchLibraryByGetterString: error cleaning destination %s: %w", dst, err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("FetchLibraryByGetterString: error getting working directory: %w", err)
	}
	client := getter.Client{}
	req := &getter.Request{
		Src: getterString,
		Dst: dst,
		Pwd: wd,
	}
	if _, err := client.Get(ctx, req); err != nil {
		return nil, fmt.Errorf("FetchLibraryByGetterString: error fetching library %s: %w", getterString, err)
	}
	return os.DirFS(dst), nil
}

// FetchLibrariesWithDependencies fetches the supplied rule libraries and,
// recursively, the dependencies declared in their metadata. The returned
// references are ordered dependencies-first, so passing their filesystems to
// Analyzer.Init processes every dependency before the member that requires
// it. A library referenced more than once is fetched only once.
//
// Example usage:
//
//	lib := armlint.NewCustomLibraryReference("path/to/library")
//	libs, err := armlint.FetchLibrariesWithDependencies(ctx, lib)
//	// ... handle error
//	err = analyzer.Init(ctx, libs.FSs()...)
//	// ... handle error
func FetchLibrariesWithDependencies(ctx context.Context, libs ...RuleLibraryReference) (RuleLibraryReferences, error) {
	lf := &libraryFetcher{}
	fetched := make(RuleLibraryReferences, 0, len(libs))
	var err error
	for _, lib := range libs {
		fetched, err = lf.fetch(ctx, lib, fetched)
		if err != nil {
			return nil, err
		}
	}
	return fetched, nil
}

// libraryFetcher numbers fetch destinations so that each library member
// lands in its own directory beneath the armlint cache directory.
type libraryFetcher struct {
	n int
}

func (lf *libraryFetcher) fetch(ctx context.Context, lib RuleLibraryReference, acc RuleLibraryReferences) (RuleLibraryReferences, error) {
	if containsLibraryReference(acc, lib) {
		return acc, nil
	}
	dir := strconv.Itoa(lf.n)
	lf.n++
	f, err := lib.Fetch(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("libraryFetcher.fetch: error fetching library %s: %w", lib.String(), err)
	}
	libmeta, err := processor.NewClient(f).Metadata()
	if err != nil {
		return nil, fmt.Errorf("libraryFetcher.fetch: error reading metadata of library %s: %w", lib.String(), err)
	}
	meta := NewMetadata(libmeta)
	// for each dependency, recurse using this function
	for _, dep := range meta.Dependencies() {
		acc, err = lf.fetch(ctx, dep, acc)
		if err != nil {
			return nil, err
		}
	}
	// add the current library reference after its dependencies
	return append(acc, lib), nil
}

// containsLibraryReference reports whether the slice already holds a
// reference with the same identity.
func containsLibraryReference(refs RuleLibraryReferences, lib RuleLibraryReference) bool {
	return slices.ContainsFunc(refs, func(l RuleLibraryReference) bool {
		return l.String() == lib.String()
	})
}
