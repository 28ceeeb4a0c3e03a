// Package model defines the domain types and value objects for the
// git-forest CLI.
//
// It contains validated name newtypes (ForestName, RepoName, BranchName),
// the persisted forest metadata record (ForestMeta/RepoMeta), and path
// helpers. Invalid values are rejected at construction time; a value of
// one of these types is always well-formed.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
