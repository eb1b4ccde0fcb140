package document

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitHistory resolves history descriptors with git show. The file's own
// directory is used as the working directory, so any repository works.
type GitHistory struct {
	// Binary is the git executable. Defaults to "git".
	Binary string
}

// Content returns path as of ref.
func (g GitHistory) Content(ctx context.Context, path, ref string) (string, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	dir, base := filepath.Split(path)
	args := []string{"show", ref + ":./" + base}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
