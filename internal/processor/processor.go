// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package processor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/Azure/armlint/internal/environment"
	"github.com/Azure/armlint/rules"
)

// RuleCatalogFileType is the file name infix that marks a rule catalog.
const (
	RuleCatalogFileType = "rules"
	ruleCatalogSuffix   = ".+\\." + RuleCatalogFileType + "\\.(?:json|yaml|yml)$"
)

const armlintMetadataFile = "armlint_metadata.json"

var supportedFileTypes = []string{".json", ".yaml", ".yml"}

// RuleCatalogRegex matches the file names holding rule catalogs,
// e.g. "appservice.rules.json" or "security.rules.yaml".
var RuleCatalogRegex = regexp.MustCompile(ruleCatalogSuffix)

var (
	// ErrRuleAlreadyExists is returned when a rule id appears twice within one library.
	ErrRuleAlreadyExists = errors.New("rule already exists in the library")

	// ErrUnmarshaling is returned when unmarshaling fails.
	ErrUnmarshaling = errors.New("error converting data from YAML/JSON, please check the file format and content")

	// ErrProcessingFile is returned when there is an error processing the file.
	ErrProcessingFile = errors.New("error processing file, please check the file format and content")
)

// NewErrRuleAlreadyExists creates a new error indicating that a rule id is already taken.
func NewErrRuleAlreadyExists(id string) error {
	return fmt.Errorf("%w: rule with id `%s` already exists", ErrRuleAlreadyExists, id)
}

// NewErrorUnmarshaling creates a new error indicating that unmarshaling failed.
func NewErrorUnmarshaling(detail string) error {
	return fmt.Errorf("%w: %s", ErrUnmarshaling, detail)
}

// Result is the structure that gets built by scanning the library files.
type Result struct {
	Catalog  rules.Catalog
	Metadata *LibMetadata
}

// NewResult creates a new empty Result.
func NewResult() *Result {
	return &Result{
		Catalog:  make(rules.Catalog, 0),
		Metadata: nil,
	}
}

// processFunc is the function signature that is used to process different types of lib file.
type processFunc func(result *Result, data Unmarshaler) error

// Client is the client that is used to process the library files.
type Client struct {
	fs fs.FS
}

// NewClient creates a new Client with the provided filesystem.
func NewClient(fs fs.FS) *Client {
	return &Client{
		fs: fs,
	}
}

// Metadata returns the metadata of the library. A library without a metadata
// file yields an empty metadata value rather than an error.
func (client *Client) Metadata() (*LibMetadata, error) {
	metadataFile, err := client.fs.Open(armlintMetadataFile)

	var pe *fs.PathError

	if errors.As(err, &pe) {
		return &LibMetadata{
			Name:         "",
			DisplayName:  "",
			Description:  "",
			Path:         "",
			Dependencies: make([]LibMetadataDependency, 0),
		}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("Client.Metadata: error opening metadata file: %w", err)
	}

	defer metadataFile.Close() // nolint: errcheck

	data, err := io.ReadAll(metadataFile)
	if err != nil {
		return nil, fmt.Errorf("Client.Metadata: error reading metadata file: %w", err)
	}

	unmar := NewUnmarshaler(data, ".json")
	metadata := new(LibMetadata)

	err = unmar.Unmarshal(metadata)
	if err != nil {
		return nil, errors.Join(NewErrorUnmarshaling(armlintMetadataFile), err)
	}

	for _, dep := range metadata.Dependencies {
		switch {
		case dep.Path != "" && dep.Ref != "" && dep.CustomURL == "":
			continue
		case dep.Path == "" && dep.Ref == "" && dep.CustomURL != "":
			continue
		default:
			return nil, fmt.Errorf(
				"Client.Metadata: invalid dependency, either path & ref should be set, or custom_url: %v",
				dep,
			)
		}
	}

	return metadata, nil
}

// Process reads the library files and processes them into a Result.
// Pass in a pointer to a Result struct to store the processed data,
// create a new *Result with NewResult().
func (client *Client) Process(res *Result) error {
	// Open the metadata file and store contents in the result
	metad, err := client.Metadata()
	if err != nil {
		return fmt.Errorf("Client.Process: error getting metadata: %w", err)
	}

	res.Metadata = metad

	// Walk the FS and process rule catalog files
	if err := fs.WalkDir(client.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("Client.Process: error walking directory %s: %w", path, err)
		}
		// Skip directories
		if d.IsDir() {
			return nil
		}
		// Skip files where path contains base of the `ARMLINT_DIR`,
		// these are fetched dependencies of the library being processed.
		armLintDirBase := filepath.Base(environment.ArmLintDir())
		if strings.Contains(path, armLintDirBase) {
			return nil
		}
		// Skip files that are not json or yaml
		if !slices.Contains(supportedFileTypes, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		file, err := client.fs.Open(path)
		if err != nil {
			return fmt.Errorf("Client.Process: error opening file %s: %w", path, err)
		}
		return classifyLibFile(res, file, d.Name())
	}); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

// classifyLibFile identifies the supplied file and calls the appropriate processFunc.
// Files that match no known name pattern are ignored.
func classifyLibFile(res *Result, file fs.File, name string) error {
	err := error(nil)

	switch n := strings.ToLower(name); {
	case RuleCatalogRegex.MatchString(n):
		err = readAndProcessFile(res, file, processRuleCatalog)
	}

	if err != nil {
		err = errors.Join(
			ErrProcessingFile, err,
		)
	}

	return err
}

// processRuleCatalog is a processFunc that parses a rule catalog file and
// appends its rules to the result. Rule ids must be unique within the library,
// across all of its catalog files.
func processRuleCatalog(res *Result, unmar Unmarshaler) error {
	data, err := unmar.JSON()
	if err != nil {
		return errors.Join(NewErrorUnmarshaling("rule catalog"), err)
	}

	catalog, err := rules.LoadCatalog(data)
	if err != nil {
		return fmt.Errorf("processRuleCatalog: %w", err)
	}

	for _, rule := range catalog {
		if res.Catalog.WithID(rule.ID) != nil {
			return NewErrRuleAlreadyExists(rule.ID)
		}

		res.Catalog = append(res.Catalog, rule)
	}

	return nil
}

// readAndProcessFile reads the file bytes at the supplied path and processes it using the supplied
// processFunc.
func readAndProcessFile(res *Result, file fs.File, processFn processFunc) error {
	s, err := file.Stat()
	if err != nil {
		return err //nolint:wrapcheck
	}

	data := make([]byte, s.Size())

	defer file.Close() // nolint:errcheck

	if _, err := file.Read(data); err != nil {
		return err //nolint:wrapcheck
	}

	ext := filepath.Ext(s.Name())
	// create a new unmarshaler
	unmar := NewUnmarshaler(data, ext)

	// pass the data to the supplied process function
	if err := processFn(res, unmar); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}
