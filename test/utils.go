package test

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	. "github.com/onsi/gomega"
)

// DataDir returns the absolute path of the shared test data directory.
func DataDir() (string, error) {
	_, thisFile, _, _ := runtime.Caller(0)

	if strings.Contains(thisFile, "vendor") {
		return filepath.Abs(path.Join(thisFile, "../../../../../..", "test", "data"))
	}
	return filepath.Abs(path.Join(thisFile, "..", "data"))
}

func FileToBytes(fileName string) ([]byte, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}

	urlPath := filepath.Join(dataDir, fileName)
	Expect(urlPath).To(BeAnExistingFile())

	return os.ReadFile(urlPath)
}
