package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		config         *LoggerConfig
		expectError    bool
		validateOutput func(zerolog.Logger) bool
	}{
		{
			name: "valid production environment",
			config: &LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     "unix",
				Fields:         map[string]interface{}{"key": "value"},
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel && logger.GetLevel() == zerolog.InfoLevel
			},
		},
		{
			name: "invalid configuration - wrong env",
			config: &LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env", // not allowed by validator
				Level:       "debug",
			},
			expectError: true,
		},
		{
			name: "valid development environment with trace level",
			config: &LoggerConfig{
				ServiceName: "test-service",
				Env:         "dev",
				Level:       "trace",
				DebugFile:   filepath.Join(t.TempDir(), "trace.log"),
				WithCaller:  true,
				Stacktrace:  true,
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return logger.GetLevel() == zerolog.TraceLevel
			},
		},
		{
			name: "invalid log level",
			config: &LoggerConfig{
				ServiceName: "test-service",
				Env:         "prod",
				Level:       "invalid-level", // not allowed
			},
			expectError: true,
		},
		{
			name: "invalid format",
			config: &LoggerConfig{
				Env:    "prod",
				Format: "xml",
			},
			expectError: true,
		},
		{
			name: "valid staging environment",
			config: &LoggerConfig{
				ServiceName: "test-service",
				Env:         "staging",
				Level:       "warn",
				TimeFormat:  "rfc3339",
				Stacktrace:  true,
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.WarnLevel
			},
		},
		{
			name: "valid test environment defaults to info",
			config: &LoggerConfig{
				Env: "test",
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return logger.GetLevel() == zerolog.InfoLevel
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := New(test.config)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if test.validateOutput != nil {
				assert.True(t, test.validateOutput(l))
			}
		})
	}
}

func TestNew_DebugFileInDev(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	l, err := New(&LoggerConfig{Env: "dev", Level: "debug", Format: "json", DebugFile: path})
	require.NoError(t, err)

	l.Debug().Msg("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), `"service":"memo-service"`)
}

func TestNew_NoDebugFileOutsideDev(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	_, err := New(&LoggerConfig{Env: "prod", Level: "debug", DebugFile: path})
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSetDefaults(t *testing.T) {
	dev := &LoggerConfig{Env: "dev"}
	dev.setDefaults()
	assert.Equal(t, "debug", dev.Level)
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "logs/debug.log", dev.DebugFile)
	assert.True(t, dev.WithCaller)
	assert.False(t, dev.Stacktrace)

	prod := &LoggerConfig{}
	prod.setDefaults()
	assert.Equal(t, "prod", prod.Env)
	assert.Equal(t, "info", prod.Level)
	assert.Equal(t, "json", prod.Format)
	assert.Empty(t, prod.DebugFile)
	assert.True(t, prod.Stacktrace)
	assert.Equal(t, "ts", prod.TimeField)
	assert.NotNil(t, prod.Fields)
}
