package ci_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Guards the release pipeline: the test workflow must run the full suite and
// the release workflow must build the container image from the repository
// Dockerfile.
func TestGitHubWorkflowsRunRequiredSteps(t *testing.T) {
	projectRoot := filepath.Clean(filepath.Join("..", ".."))
	testCases := []struct {
		relativePath string
		requiredSnip []byte
	}{
		{
			relativePath: filepath.Join(".github", "workflows", "go-tests.yml"),
			requiredSnip: []byte("go test ./..."),
		},
		{
			relativePath: filepath.Join(".github", "workflows", "release.yml"),
			requiredSnip: []byte("docker build"),
		},
		{
			relativePath: "Dockerfile",
			requiredSnip: []byte("go build"),
		},
	}

	for _, testCase := range testCases {
		fullPath := filepath.Join(projectRoot, testCase.relativePath)
		data, err := os.ReadFile(fullPath)
		if err != nil {
			t.Fatalf("read %q: %v", testCase.relativePath, err)
		}

		if !bytes.Contains(data, testCase.requiredSnip) {
			t.Fatalf("%q missing required snippet %q", testCase.relativePath, string(testCase.requiredSnip))
		}
	}
}
