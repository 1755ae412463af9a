package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Test binaries importing this package log at trace level, but only to the
// console when run verbosely.
func init() {
	var isVerbose bool
	for _, arg := range os.Args {
		if arg == "-test.v=true" || arg == "-test.v" {
			isVerbose = true
		}
	}

	logrus.SetLevel(logrus.TraceLevel)

	if !isVerbose {
		logrus.StandardLogger().Out = io.Discard
	}
}
