package testutil

import (
	"github.com/bme-bharat/communityfeed/internal/logging"
)

// NullLogger returns a logger that discards most output
func NullLogger() *logging.Logger {
	return logging.New(logging.LevelError)
}
