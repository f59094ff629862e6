package bundle

import (
	"fmt"
	"os/exec"
	"strings"
)

// Runner runs a command and returns its standard output
type Runner interface {
	Output() ([]byte, error)
}

var execCommand = func(dir, name string, args ...string) Runner {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd
}

// ShortRevision returns the abbreviated HEAD commit of the repository at dir
func ShortRevision(dir string) (string, error) {
	out, err := execCommand(dir, "git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("could not determine git revision: %w", err)
	}

	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "", fmt.Errorf("could not determine git revision: empty output")
	}

	return sha, nil
}
