package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const textFileName = "test.txt"

// GitRepo represents a Git repository for testing purposes.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in dir with master as the initial branch.
func NewGitRepo(dir string) (*GitRepo, error) {
	return newGitRepoInternal(dir, &gitRepoOptions{})
}

// NewGitRepoFromURL clones a repository from a remote URL.
func NewGitRepoFromURL(dir string, repoURL string) (*GitRepo, error) {
	return newGitRepoInternal(dir, &gitRepoOptions{repoURL: repoURL})
}

// OpenGitRepo wraps an existing repository without touching it.
func OpenGitRepo(dir string) *GitRepo {
	return &GitRepo{Dir: dir}
}

// gitRepoOptions holds options for creating a GitRepo.
type gitRepoOptions struct {
	repoURL string
}

// newGitRepoInternal is the internal implementation for creating a GitRepo.
func newGitRepoInternal(dir string, options *gitRepoOptions) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	var cmd *exec.Cmd
	if options.repoURL != "" {
		cmd = exec.Command("git", "clone", "-q", options.repoURL, dir)
	} else {
		cmd = exec.Command("git", "-c", "init.defaultBranch=master", "-c", "core.autocrlf=false", "init", "-q", dir)
	}
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to create repo: %s: %w", string(output), err)
	}

	// Configure Git user (required for commits)
	if err := repo.runGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.runGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

// runGitCommand executes a git command in the repository directory.
// Uses GIT_CONFIG_GLOBAL=/dev/null to avoid reading global config.
func (r *GitRepo) runGitCommand(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %s: %w", strings.Join(args, " "), string(output), err)
	}
	return nil
}

// RunGitCommand executes a git command and returns an error if it fails.
func (r *GitRepo) RunGitCommand(args ...string) error {
	return r.runGitCommand(args...)
}

// runGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) runGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RunGitCommandAndGetOutput executes a git command and returns its output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	return r.runGitCommandAndGetOutput(args...)
}

// CreateChange writes a file change in the repository, staging it unless unstaged is set.
func (r *GitRepo) CreateChange(textValue string, prefix string, unstaged bool) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	filePath := filepath.Join(r.Dir, fileName)

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, []byte(textValue), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if !unstaged {
		return r.runGitCommand("add", filePath)
	}

	return nil
}

// CreateChangeAndCommit creates a file change and commits it.
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	if err := r.CreateChange(textValue, prefix, false); err != nil {
		return err
	}
	if err := r.runGitCommand("add", "."); err != nil {
		return err
	}
	return r.runGitCommand("commit", "-q", "-m", textValue)
}

// CreateBranch creates a new branch without checking it out.
func (r *GitRepo) CreateBranch(name string) error {
	return r.runGitCommand("branch", name)
}

// CreateAndCheckoutBranch creates and checks out a new branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.runGitCommand("checkout", "-q", "-b", name)
}

// CheckoutBranch checks out a branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.runGitCommand("checkout", "-q", name)
}

// CheckoutDetached checks out a revision in detached HEAD state.
func (r *GitRepo) CheckoutDetached(rev string) error {
	return r.runGitCommand("checkout", "-q", "--detach", rev)
}

// DeleteBranch deletes a branch.
func (r *GitRepo) DeleteBranch(name string) error {
	return r.runGitCommand("branch", "-D", name)
}

// CreateTag creates an annotated tag at HEAD.
func (r *GitRepo) CreateTag(name string) error {
	return r.runGitCommand("tag", "-a", name, "-m", name)
}

// CreateLightweightTag creates a lightweight tag at HEAD.
func (r *GitRepo) CreateLightweightTag(name string) error {
	return r.runGitCommand("tag", name)
}

// CurrentBranchName returns the name of the current branch.
func (r *GitRepo) CurrentBranchName() (string, error) {
	return r.runGitCommandAndGetOutput("branch", "--show-current")
}

// GetRevision returns the commit SHA of a revision (branch, tag, or commit reference).
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.runGitCommandAndGetOutput("rev-parse", rev+"^{commit}")
}

// GetCurrentSHA returns the SHA of HEAD.
func (r *GitRepo) GetCurrentSHA() (string, error) {
	return r.GetRevision("HEAD")
}

// GetLocalBranches returns a list of all local branches.
func (r *GitRepo) GetLocalBranches() ([]string, error) {
	output, err := r.runGitCommandAndGetOutput("branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

// GetRemoteBranchSHA asks remote for the tip of branch. Empty when the remote lacks it.
func (r *GitRepo) GetRemoteBranchSHA(remote, branch string) (string, error) {
	output, err := r.runGitCommandAndGetOutput("ls-remote", "--heads", remote, branch)
	if err != nil {
		return "", err
	}
	for _, line := range splitLines(output) {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == "refs/heads/"+branch {
			return fields[0], nil
		}
	}
	return "", nil
}

// ListRemoteBranches returns the branch names carried by remote.
func (r *GitRepo) ListRemoteBranches(remote string) ([]string, error) {
	output, err := r.runGitCommandAndGetOutput("ls-remote", "--heads", remote)
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range splitLines(output) {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			branches = append(branches, strings.TrimPrefix(fields[1], "refs/heads/"))
		}
	}
	return branches, nil
}

// IsAncestor checks if the first ref is an ancestor of the second ref.
func (r *GitRepo) IsAncestor(ancestor, descendant string) (bool, error) {
	err := r.runGitCommand("merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// splitLines splits a string by newlines and returns non-empty lines.
func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// CreateBareRemote creates a bare git repository (HEAD on master) to act as a
// remote and registers it under name. Returns the path to the bare repository.
func (r *GitRepo) CreateBareRemote(name string) (string, error) {
	bareDir, err := NewBareRepo(r.Dir + "-" + name + ".git")
	if err != nil {
		return "", err
	}

	if err := r.runGitCommand("remote", "add", name, bareDir); err != nil {
		return "", fmt.Errorf("failed to add remote: %w", err)
	}

	return bareDir, nil
}

// NewBareRepo initializes an empty bare repository at dir with HEAD on master.
func NewBareRepo(dir string) (string, error) {
	cmd := exec.Command("git", "-c", "init.defaultBranch=master", "init", "-q", "--bare", dir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %s: %w", string(output), err)
	}
	return dir, nil
}

// PushBranch pushes a branch to a remote.
func (r *GitRepo) PushBranch(remote, branch string) error {
	return r.runGitCommand("push", "-q", "-u", remote, branch)
}

// PushTag pushes a tag to a remote.
func (r *GitRepo) PushTag(remote, tag string) error {
	return r.runGitCommand("push", "-q", remote, "refs/tags/"+tag)
}
