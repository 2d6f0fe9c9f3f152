// Package environment contains the types and methods for fetching configuration from the local environment.
package environment

import "os"

const (
	fetchDefaultBaseDir    = ".armlint"                         // fetchDefaultBaseDir is the default base directory for fetching rule libraries.
	fetchDefaultBaseDirEnv = "ARMLINT_DIR"                      // fetchDefaultBaseDirEnv is the environment variable to override the default base directory.
	ruleLibraryGitUrl      = "github.com/Azure/armlint-library" // ruleLibraryGitUrl is the URL of the central armlint rule library.
	ruleLibraryGitUrlEnv   = "ARMLINT_LIBRARY_GIT_URL"          // ruleLibraryGitUrlEnv is the environment variable to override the default git URL.
)

// ArmLintDir contents of the `ARMLINT_DIR` environment variable, or the default which is `.armlint`.
func ArmLintDir() string {
	dir := fetchDefaultBaseDir
	if d := os.Getenv(fetchDefaultBaseDirEnv); d != "" {
		dir = d
	}
	return dir
}

// RuleLibraryGitUrl contents of the `ARMLINT_LIBRARY_GIT_URL` environment variable, or the default which is `github.com/Azure/armlint-library`.
func RuleLibraryGitUrl() string {
	url := ruleLibraryGitUrl
	if u := os.Getenv(ruleLibraryGitUrlEnv); u != "" {
		url = u
	}
	return url
}
