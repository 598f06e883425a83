package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvHome overrides the application home directory.
const EnvHome = "STIG_ASSIST_HOME"

// homeDirName is the directory created under the user's home.
const homeDirName = ".stig-assist"

// HomeDir returns the directory holding config, prompts and the default corpus.
// STIG_ASSIST_HOME wins over ~/.stig-assist.
func HomeDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}
