// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logging

import (
	"io"
	"os"
	"strings"

	azcorelog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It writes to stderr so that command output on
// stdout stays machine readable.
var Log = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   false,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// Options configures Init
type Options struct {
	Level  string
	Debug  bool
	Output io.Writer
}

// Init applies the level and output. Debug overrides the level and also forwards
// Azure SDK log events into the logger.
func Init(opts Options) {
	if opts.Output != nil {
		Log.SetOutput(opts.Output)
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.WarnLevel
	}
	if opts.Debug {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)

	if opts.Debug {
		azcorelog.SetListener(func(event azcorelog.Event, msg string) {
			Log.WithField("azsdk", string(event)).Debug(msg)
		})
	} else {
		azcorelog.SetListener(nil)
	}
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
