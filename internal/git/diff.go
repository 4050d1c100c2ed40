// Package git discovers ATIP documents among uncommitted changes, so a
// pre-commit hook can lint only what is about to land.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// StagedFiles returns absolute paths of ATIP documents in the git staging
// area. Returns an empty slice if not in a git repository.
func StagedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	cmd := exec.Command("git", "diff", "--name-only", "--staged")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff --staged failed: %w: %s", err, output)
	}

	return filterDocuments(string(output), rootPath)
}

// ChangedFiles returns absolute paths of ATIP documents with uncommitted
// changes, staged or not. Returns an empty slice if not in a git repository.
func ChangedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	// A repository with no commits has no HEAD to diff against.
	checkCmd := exec.Command("git", "rev-parse", "HEAD")
	checkCmd.Dir = rootPath
	if err := checkCmd.Run(); err != nil {
		cmd := exec.Command("git", "ls-files")
		cmd.Dir = rootPath
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("git ls-files failed: %w: %s", err, output)
		}
		return filterDocuments(string(output), rootPath)
	}

	cmd := exec.Command("git", "diff", "--name-only", "HEAD")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff HEAD failed: %w: %s", err, output)
	}

	return filterDocuments(string(output), rootPath)
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	cmd.Stderr = nil
	err := cmd.Run()
	return err == nil
}

// filterDocuments keeps paths that look like ATIP documents and still exist
// on disk (git reports deletions too). Returns absolute paths.
func filterDocuments(gitOutput, rootPath string) ([]string, error) {
	var files []string
	lines := strings.Split(strings.TrimSpace(gitOutput), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		absPath := filepath.Join(rootPath, line)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			continue
		}

		if !IsDocumentPath(line) {
			continue
		}

		files = append(files, absPath)
	}

	return files, nil
}

// IsDocumentPath reports whether a path names an ATIP document by
// convention: *.atip.json anywhere, or any .json directly under an atip/
// or tools/ directory.
func IsDocumentPath(relPath string) bool {
	lowerPath := strings.ToLower(filepath.ToSlash(relPath))

	if strings.HasSuffix(lowerPath, ".atip.json") {
		return true
	}
	if !strings.HasSuffix(lowerPath, ".json") {
		return false
	}

	dir := ""
	if i := strings.LastIndex(lowerPath, "/"); i >= 0 {
		parent := lowerPath[:i]
		if j := strings.LastIndex(parent, "/"); j >= 0 {
			dir = parent[j+1:]
		} else {
			dir = parent
		}
	}
	return dir == "atip" || dir == "tools"
}
