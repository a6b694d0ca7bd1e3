package util

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	projectRootDir     string
	projectRootDirOnce sync.Once
)

// GetProjectRootDir returns the path as string to the project_root.
// PROJECT_ROOT_DIR overrides the lookup, otherwise the nearest parent holding a go.mod wins.
func GetProjectRootDir() string {
	projectRootDirOnce.Do(func() {
		if val, ok := os.LookupEnv("PROJECT_ROOT_DIR"); ok {
			projectRootDir = val
			return
		}

		dir, err := os.Getwd()
		if err != nil {
			projectRootDir = "."
			return
		}

		for d := dir; ; d = filepath.Dir(d) {
			if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
				projectRootDir = d
				return
			}
			if filepath.Dir(d) == d {
				break
			}
		}

		projectRootDir = dir
	})

	return projectRootDir
}
