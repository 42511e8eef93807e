// Copyright (c) 2022 Shivaram Lingamneni
// Released under the MIT license

package pwhash

import "fmt"

const (
	// SemVer is the semantic version of phpbb-pwhash.
	SemVer = "1.0.0"
)

var (
	// Ver is the full version string, shown by the CLI's --version output.
	Ver = fmt.Sprintf("phpbb-pwhash-%s", SemVer)
	// Commit is the full git hash, if available
	Commit string
)

// initialize version strings (these are set in package main via linker flags)
func SetVersionString(version, commit string) {
	Commit = commit
	if version != "" {
		Ver = fmt.Sprintf("phpbb-pwhash-%s", version)
	} else if len(Commit) == 40 {
		Ver = fmt.Sprintf("phpbb-pwhash-%s-%s", SemVer, Commit[:16])
	}
}
