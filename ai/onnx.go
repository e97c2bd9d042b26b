package ai

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	onnxInitMu      sync.Mutex
	onnxInitialized bool
)

// initONNXRuntime loads the shared onnxruntime library once per process.
// The library path comes from ONNXRUNTIME_SHARED_LIBRARY_PATH or a few
// conventional locations next to the binary.
func initONNXRuntime() error {
	onnxInitMu.Lock()
	defer onnxInitMu.Unlock()

	if onnxInitialized {
		return nil
	}

	libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")
	if libPath == "" {
		searchPaths := []string{
			"./libonnxruntime.so",
			"./libonnxruntime.dylib",
			"/usr/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.dylib",
		}
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				libPath = path
				break
			}
		}
	}

	if libPath == "" {
		return fmt.Errorf("onnxruntime shared library not found (set ONNXRUNTIME_SHARED_LIBRARY_PATH)")
	}
	logrus.Infof("using onnxruntime library: %s", libPath)
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return err
	}
	onnxInitialized = true
	return nil
}
