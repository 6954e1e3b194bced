// Package vscplog wraps zap with the field conventions the rest of the
// module uses when logging node state-machine transitions, register
// access and dropped/malformed frames.
package vscplog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a development logger (human-readable, colorised level,
// stack traces on error) when debug is true, otherwise a production JSON
// logger suited to running as an embedded/headless service.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, for tests and library
// callers that haven't wired one up.
func Nop() *zap.Logger { return zap.NewNop() }

// Fields are the repeated key names used across the module so call sites
// stay consistent without sharing a single giant logger struct.
const (
	FieldState    = "state"
	FieldNickname = "nickname"
	FieldClass    = "class"
	FieldType     = "type"
	FieldOrigin   = "origin"
	FieldPage     = "page"
	FieldAddr     = "addr"
	FieldReason   = "reason"
)
