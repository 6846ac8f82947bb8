// errors.go: structured error definitions for the LiquidRoute geyser plugin
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the plugin
const (
	// Configuration errors (1700-1799)
	ErrCodeConfigFileOpen     = "CONFIG_1701"
	ErrCodeConfigFileRead     = "CONFIG_1702"
	ErrCodeConfigParse        = "CONFIG_1703"
	ErrCodeConfigInvalidPath  = "CONFIG_1704"
	ErrCodeConfigNoCandidates = "CONFIG_1705"

	// Lifecycle errors (1800-1899)
	ErrCodeLifecycleConstruction = "LIFECYCLE_1801"
	ErrCodeExecutorCreation      = "LIFECYCLE_1802"
	ErrCodeCallbackPanic         = "LIFECYCLE_1803"
)

// ConfigErrorKindValue names the class of a configuration resolution failure.
type ConfigErrorKindValue string

const (
	ConfigErrorFileOpen     ConfigErrorKindValue = "FileOpen"
	ConfigErrorFileRead     ConfigErrorKindValue = "FileRead"
	ConfigErrorParse        ConfigErrorKindValue = "Parse"
	ConfigErrorInvalidPath  ConfigErrorKindValue = "InvalidPath"
	ConfigErrorNoCandidates ConfigErrorKindValue = "NoCandidates"
)

// Configuration error constructors

func NewConfigFileOpenError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigFileOpen, "Failed to open config file").
		WithUserMessage("The configuration file does not exist or is not readable").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigFileReadError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigFileRead, "Failed to read config file").
		WithUserMessage("The configuration file could not be read").
		WithContext("config_path", path).
		WithSeverity("error")
}

// NewConfigParseError keeps the strict parser's error as the cause. The
// lenient parser's diagnostic, when there is one, travels as context.
func NewConfigParseError(path string, strictErr, lenientErr error) *errors.Error {
	err := errors.Wrap(strictErr, ErrCodeConfigParse, "Failed to parse config file").
		WithUserMessage("The configuration file is not valid JSON").
		WithContext("config_path", path).
		WithSeverity("error")
	if lenientErr != nil {
		err = err.WithContext("lenient_error", lenientErr.Error())
	}
	return err
}

func NewConfigInvalidPathError(path string, reason string) *errors.Error {
	return errors.New(ErrCodeConfigInvalidPath, "Invalid config file path: "+reason).
		WithUserMessage("The configuration file path is malformed").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigNoCandidatesError() *errors.Error {
	return errors.New(ErrCodeConfigNoCandidates, "No config file candidates").
		WithUserMessage("No configuration file locations were provided").
		WithSeverity("error")
}

// Lifecycle error constructors

func NewLifecycleConstructionError(message string, cause error) *errors.Error {
	if cause == nil {
		return errors.New(ErrCodeLifecycleConstruction, "Plugin construction failed: "+message).
			WithUserMessage("Failed to construct the plugin").
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeLifecycleConstruction, "Plugin construction failed: "+message).
		WithUserMessage("Failed to construct the plugin").
		WithSeverity("error")
}

func NewExecutorCreationError(workers int) *errors.Error {
	return errors.New(ErrCodeExecutorCreation, "Execution context creation failed").
		WithUserMessage("The worker pool could not be created").
		WithContext("workers", workers).
		WithSeverity("error")
}

func NewCallbackPanicError(callback string, recovered interface{}) *errors.Error {
	return errors.New(ErrCodeCallbackPanic, "Callback panicked").
		WithUserMessage("A plugin callback panicked and was contained").
		WithContext("callback", callback).
		WithContext("panic", recovered).
		WithSeverity("warning")
}

// ConfigErrorKind reports which configuration failure class err belongs to.
func ConfigErrorKind(err error) (ConfigErrorKindValue, bool) {
	var coded *errors.Error
	if !stderrors.As(err, &coded) {
		return "", false
	}

	switch coded.Code {
	case ErrCodeConfigFileOpen:
		return ConfigErrorFileOpen, true
	case ErrCodeConfigFileRead:
		return ConfigErrorFileRead, true
	case ErrCodeConfigParse:
		return ConfigErrorParse, true
	case ErrCodeConfigInvalidPath:
		return ConfigErrorInvalidPath, true
	case ErrCodeConfigNoCandidates:
		return ConfigErrorNoCandidates, true
	default:
		return "", false
	}
}
