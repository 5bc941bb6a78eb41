package git

import (
	"crypto/sha1"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"percipio.com/xferhist/lib/logger"
)

type CommitInfo struct {
	Hash      string
	ShortHash string
	Branch    string
	Timestamp time.Time
	RepoName  string
}

// GetCommitInfo describes HEAD of the repository in the working directory.
// With useGit false it returns a hash derived from the current time.
func GetCommitInfo(useGit bool) (*CommitInfo, error) {
	if !useGit {
		return generateTimestampHash(time.Now()), nil
	}

	hash, err := execGitCommand("rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to get commit hash: %w", err)
	}
	hash = strings.TrimSpace(hash)
	if len(hash) < 8 {
		return nil, fmt.Errorf("unexpected commit hash %q", hash)
	}

	branch, err := execGitCommand("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = "unknown"
	}

	remoteURL, err := execGitCommand("config", "--get", "remote.origin.url")
	if err != nil {
		logger.Debug("No remote URL: %v", err)
		remoteURL = ""
	}

	timestamp := time.Now()
	if authorTime, err := execGitCommand("log", "-1", "--format=%aI"); err == nil {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(authorTime)); err == nil {
			timestamp = parsed
		}
	}

	return &CommitInfo{
		Hash:      hash,
		ShortHash: hash[:8],
		Branch:    strings.TrimSpace(branch),
		Timestamp: timestamp,
		RepoName:  parseRepoName(remoteURL),
	}, nil
}

func execGitCommand(args ...string) (string, error) {
	output, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func generateTimestampHash(now time.Time) *CommitInfo {
	h := sha1.New()
	h.Write([]byte(fmt.Sprintf("%d", now.UnixNano())))
	fullHash := fmt.Sprintf("%x", h.Sum(nil))

	return &CommitInfo{
		Hash:      fullHash,
		ShortHash: fullHash[:8],
		Branch:    "timestamp",
		Timestamp: now,
	}
}

func parseRepoName(remoteURL string) string {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, ".git")
	remoteURL = strings.ReplaceAll(remoteURL, ":", "/")
	parts := strings.Split(remoteURL, "/")
	if len(parts) >= 2 && parts[len(parts)-2] != "" && parts[len(parts)-1] != "" {
		return fmt.Sprintf("%s/%s", parts[len(parts)-2], parts[len(parts)-1])
	}
	return "unknown"
}
