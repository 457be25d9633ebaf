package tools

import (
	"fmt"
	"os/exec"
)

// GitDiffTool returns the zero-context diff between two revisions, or of the
// staged changes when "staged" is set.
type GitDiffTool struct {
	Dir string
}

func (t *GitDiffTool) Name() string {
	return string(ToolNameGitDiff)
}

func (t *GitDiffTool) Description() string {
	return "Get the diff between two revisions (git diff -U0 base...head) or of the index (git diff -U0 --staged)"
}

func (t *GitDiffTool) Execute(args map[string]any) (string, error) {
	cmdArgs := []string{"diff", "-U0", "--no-color"}

	if staged, _ := args["staged"].(bool); staged {
		cmdArgs = append(cmdArgs, "--staged")
	} else {
		base, head, err := revisionArgs(args)
		if err != nil {
			return "", err
		}
		cmdArgs = append(cmdArgs, fmt.Sprintf("%s...%s", base, head))
	}

	if path, ok := args["path"].(string); ok && path != "" {
		cmdArgs = append(cmdArgs, "--", path)
	}

	return runGit(t.Dir, cmdArgs...)
}

// GitShowTool returns the content of a file at a revision. With "index" set
// it returns the staged content instead.
type GitShowTool struct {
	Dir string
}

func (t *GitShowTool) Name() string {
	return string(ToolNameGitShow)
}

func (t *GitShowTool) Description() string {
	return "Get file content at a revision (git show ref:path) or in the index (git show :path)"
}

func (t *GitShowTool) Execute(args map[string]any) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("path parameter required")
	}
	if index, _ := args["index"].(bool); index {
		return runGit(t.Dir, "show", ":"+path)
	}

	ref, ok := args["ref"].(string)
	if !ok || ref == "" {
		return "", fmt.Errorf("ref parameter required")
	}
	return runGit(t.Dir, "show", fmt.Sprintf("%s:%s", ref, path))
}

func revisionArgs(args map[string]any) (string, string, error) {
	base, ok := args["base"].(string)
	if !ok || base == "" {
		return "", "", fmt.Errorf("base parameter required")
	}
	head, ok := args["head"].(string)
	if !ok || head == "" {
		return "", "", fmt.Errorf("head parameter required")
	}
	return base, head, nil
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s failed: %w\n%s", args[0], err, exitError.Stderr)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(output), nil
}
