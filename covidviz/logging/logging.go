/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package logging provides logging helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log formats.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// Config builds the zap configuration for the given level name and format.
func Config(level, format string) (zap.Config, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	switch format {
	case "":
		format = ConsoleFormat
	case ConsoleFormat, JSONFormat:
	default:
		return zap.Config{}, fmt.Errorf("invalid log format '%s'", format)
	}
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Development:       lvl == zapcore.DebugLevel,
		DisableCaller:     false,
		DisableStacktrace: lvl != zapcore.DebugLevel,
		Sampling:          nil,
		Encoding:          format,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}, nil
}

// Setup initializes logging with the given level name and format, replacing
// zap's global loggers and redirecting the standard library logger.  It
// returns the root logger.
func Setup(level, format string) (*zap.Logger, error) {
	config, err := Config(level, format)
	if err != nil {
		return nil, err
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	if _, err := zap.RedirectStdLogAt(logger, zap.InfoLevel); err != nil {
		return nil, fmt.Errorf("redirecting standard logger: %w", err)
	}
	return logger, nil
}
