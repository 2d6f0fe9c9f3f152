// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armlint

import (
	"context"
	"io/fs"
	"strings"

	"github.com/Azure/armlint/internal/processor"
)

// Metadata is the processed metadata of a rule library member.
type Metadata struct {
	name         string
	displayName  string
	description  string
	dependencies []RuleLibraryReference
	path         string
}

// RuleLibraryReference is a reference to a rule library member.
// It can be fetched from either a custom go-getter URL or from the central
// armlint rule library.
type RuleLibraryReference interface {
	// Fetch fetches the library member and returns its filesystem.
	Fetch(ctx context.Context, destinationDirectory string) (fs.FS, error)
	// FS returns the filesystem of a fetched library member, or nil before
	// Fetch has been called.
	FS() fs.FS
	// String returns a stable identity for deduplication and logging.
	String() string
}

// RuleLibraryReferences is a slice of RuleLibraryReference.
type RuleLibraryReferences []RuleLibraryReference

// FSs returns the filesystems of the fetched library members, in order.
// Pass the result to Analyzer.Init.
func (refs RuleLibraryReferences) FSs() []fs.FS {
	out := make([]fs.FS, len(refs))
	for i, ref := range refs {
		out[i] = ref.FS()
	}
	return out
}

var _ RuleLibraryReference = (*ArmLintLibraryReference)(nil)
var _ RuleLibraryReference = (*CustomLibraryReference)(nil)

// ArmLintLibraryReference is a reference to a member of the central armlint
// rule library, identified by path and tag.
type ArmLintLibraryReference struct {
	path string
	ref  string
	fs   fs.FS
}

// NewArmLintLibraryReference creates a reference to a member of the central
// armlint rule library, e.g. NewArmLintLibraryReference("appservice", "2025.07.0").
func NewArmLintLibraryReference(path, ref string) *ArmLintLibraryReference {
	return &ArmLintLibraryReference{
		path: path,
		ref:  ref,
	}
}

// Fetch fetches the library member from the central armlint rule library.
func (m *ArmLintLibraryReference) Fetch(ctx context.Context, destinationDirectory string) (fs.FS, error) {
	f, err := FetchRuleLibraryMember(ctx, destinationDirectory, m.path, m.ref)
	if err != nil {
		return nil, err
	}
	m.fs = f
	return f, nil
}

// FS returns the filesystem of the fetched library member, or nil before Fetch.
func (m *ArmLintLibraryReference) FS() fs.FS {
	return m.fs
}

// String returns the formatted path and the tag of the library member.
func (m *ArmLintLibraryReference) String() string {
	return strings.Join([]string{m.path, m.ref}, "@")
}

// Path returns the path of the library member.
func (m *ArmLintLibraryReference) Path() string {
	return m.path
}

// Tag returns the tag of the library member.
func (m *ArmLintLibraryReference) Tag() string {
	return m.ref
}

// CustomLibraryReference is a reference to a rule library member that is
// fetched from a custom go-getter URL, including local directories.
type CustomLibraryReference struct {
	url string
	fs  fs.FS
}

// NewCustomLibraryReference creates a reference to a rule library at a
// custom go-getter URL.
func NewCustomLibraryReference(url string) *CustomLibraryReference {
	return &CustomLibraryReference{
		url: url,
	}
}

// Fetch fetches the library member from the custom go-getter URL.
func (m *CustomLibraryReference) Fetch(ctx context.Context, destinationDirectory string) (fs.FS, error) {
	f, err := FetchLibraryByGetterString(ctx, m.url, destinationDirectory)
	if err != nil {
		return nil, err
	}
	m.fs = f
	return f, nil
}

// FS returns the filesystem of the fetched library member, or nil before Fetch.
func (m *CustomLibraryReference) FS() fs.FS {
	return m.fs
}

// String returns the URL of the custom go-getter.
func (m *CustomLibraryReference) String() string {
	return m.url
}

// NewMetadata converts processed library metadata into its public form.
func NewMetadata(in *processor.LibMetadata) *Metadata {
	dependencies := make([]RuleLibraryReference, len(in.Dependencies))
	for i, dep := range in.Dependencies {
		dependencies[i] = NewMetadataDependencyFromProcessor(dep)
	}
	return &Metadata{
		name:         in.Name,
		displayName:  in.DisplayName,
		description:  in.Description,
		dependencies: dependencies,
		path:         in.Path,
	}
}

// NewMetadataDependencyFromProcessor converts a metadata dependency into the
// reference type that can fetch it.
func NewMetadataDependencyFromProcessor(in processor.LibMetadataDependency) RuleLibraryReference {
	if in.CustomURL != "" {
		return &CustomLibraryReference{
			url: in.CustomURL,
		}
	}
	return &ArmLintLibraryReference{
		path: in.Path,
		ref:  in.Ref,
	}
}

// Name returns the name of the library member.
func (m *Metadata) Name() string {
	return m.name
}

// DisplayName returns the display name of the library member.
func (m *Metadata) DisplayName() string {
	return m.displayName
}

// Description returns the description of the library member.
func (m *Metadata) Description() string {
	return m.description
}

// Dependencies returns the dependencies of the library member.
func (m *Metadata) Dependencies() []RuleLibraryReference {
	return m.dependencies
}

// Path returns the path of the library member.
func (m *Metadata) Path() string {
	return m.path
}
