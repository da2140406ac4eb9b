// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

var ErrDuplicateLogger = errors.New("duplicate logger")

type Config struct {
	Directory      string
	Level          logging.Level
	Format         logging.Format
	MaxSize        int // megabytes
	MaxFiles       int
	MaxAge         int // days
	Compress       bool
	DisableConsole bool
}

func NewDefaultConfig(dir string) Config {
	return Config{
		Directory: dir,
		Level:     logging.Info,
		Format:    logging.JSON,
		MaxSize:   8,
		MaxFiles:  4,
		MaxAge:    7,
	}
}

// Factory builds loggers that write to the console and to a rotating file
// per logger under [Config.Directory]. Unlike the avalanchego factory the
// console writer can be disabled entirely, keeping stdout free for command
// output.
type Factory struct {
	config Config

	lock    sync.Mutex
	loggers map[string]logging.Logger
}

func NewFactory(config Config) *Factory {
	return &Factory{
		config:  config,
		loggers: make(map[string]logging.Logger),
	}
}

func (f *Factory) Make(name string) (logging.Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.loggers[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLogger, name)
	}

	var consoleWriter io.WriteCloser = nopCloser{os.Stderr}
	if f.config.DisableConsole {
		consoleWriter = nopCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(f.config.Level, consoleWriter, logging.Colors.ConsoleEncoder())
	consoleCore.WriterDisabled = f.config.DisableConsole

	rw := &lumberjack.Logger{
		Filename:   filepath.Join(f.config.Directory, name+".log"),
		MaxSize:    f.config.MaxSize,
		MaxAge:     f.config.MaxAge,
		MaxBackups: f.config.MaxFiles,
		Compress:   f.config.Compress,
	}
	fileCore := logging.NewWrappedCore(f.config.Level, rw, f.config.Format.FileEncoder())

	l := logging.NewLogger(f.config.Format.WrapPrefix(name), consoleCore, fileCore)
	f.loggers[name] = l
	return l, nil
}

// Close stops every logger made by [f].
func (f *Factory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, l := range f.loggers {
		l.Stop()
	}
	f.loggers = map[string]logging.Logger{}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
