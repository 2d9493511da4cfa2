// Package logging provides structured logging channels for Fund Road operations
// with per-user and per-session context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Business logic channels
	ChannelAuth      Channel = "auth"      // Authentication and authorization
	ChannelContent   Channel = "content"   // Journey content, progress and resources
	ChannelSession   Channel = "session"   // Navigation state and live sessions
	ChannelFunctions Channel = "functions" // Translation and contact integrations

	// Infrastructure channels
	ChannelDatabase Channel = "database" // Database operations and queries
	ChannelStorage  Channel = "storage"  // Object storage and media processing

	// Performance channels
	ChannelPerf      Channel = "performance" // Performance monitoring and metrics
	ChannelSlowQuery Channel = "slow-query"  // Slow database queries

	ChannelDebug Channel = "debug"
)

var allChannels = []Channel{
	ChannelSystem, ChannelStartup, ChannelShutdown,
	ChannelAuth, ChannelContent, ChannelSession, ChannelFunctions,
	ChannelDatabase, ChannelStorage,
	ChannelPerf, ChannelSlowQuery,
	ChannelDebug,
}

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels map[Channel]*slog.Logger
	config   *LoggerConfig
	files    []*os.File
	mu       sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool      `json:"outputToFile"`
	OutputToConsole bool      `json:"outputToConsole"`
	LogDirectory    string    `json:"logDirectory"`
	Output          io.Writer `json:"-"` // overrides console output when set

	JSONFormat    bool `json:"jsonFormat"`
	IncludeSource bool `json:"includeSource"`

	DefaultLevel  slog.Level             `json:"defaultLevel"`
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"`
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: true,
		LogDirectory:    "logs",
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.ChannelLevels == nil {
		config.ChannelLevels = make(map[Channel]slog.Level)
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger, len(allChannels)),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	for _, channel := range allChannels {
		channelLogger, err := logger.createChannelLogger(channel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
	}

	return logger, nil
}

// NewDiscardLogger returns a logger that drops everything. Used by tests and
// by commands that do not run the server.
func NewDiscardLogger() *ChanneledLogger {
	logger, _ := NewChanneledLogger(&LoggerConfig{
		Output:          io.Discard,
		OutputToConsole: true,
		DefaultLevel:    slog.LevelError,
	})
	return logger
}

// createChannelLogger creates a slog.Logger for a specific channel
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, error) {
	level := cl.config.DefaultLevel
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level = channelLevel
	}

	var writers []io.Writer
	if cl.config.OutputToConsole {
		if cl.config.Output != nil {
			writers = append(writers, cl.config.Output)
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	if cl.config.OutputToFile {
		path := filepath.Join(cl.config.LogDirectory, fmt.Sprintf("%s.log", string(channel)))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		cl.files = append(cl.files, file)
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), nil
}

func (cl *ChanneledLogger) System() *slog.Logger    { return cl.GetChannel(ChannelSystem) }
func (cl *ChanneledLogger) Startup() *slog.Logger   { return cl.GetChannel(ChannelStartup) }
func (cl *ChanneledLogger) Shutdown() *slog.Logger  { return cl.GetChannel(ChannelShutdown) }
func (cl *ChanneledLogger) Auth() *slog.Logger      { return cl.GetChannel(ChannelAuth) }
func (cl *ChanneledLogger) Content() *slog.Logger   { return cl.GetChannel(ChannelContent) }
func (cl *ChanneledLogger) Session() *slog.Logger   { return cl.GetChannel(ChannelSession) }
func (cl *ChanneledLogger) Functions() *slog.Logger { return cl.GetChannel(ChannelFunctions) }
func (cl *ChanneledLogger) Database() *slog.Logger  { return cl.GetChannel(ChannelDatabase) }
func (cl *ChanneledLogger) Storage() *slog.Logger   { return cl.GetChannel(ChannelStorage) }
func (cl *ChanneledLogger) Perf() *slog.Logger      { return cl.GetChannel(ChannelPerf) }
func (cl *ChanneledLogger) SlowQuery() *slog.Logger { return cl.GetChannel(ChannelSlowQuery) }
func (cl *ChanneledLogger) Debug() *slog.Logger     { return cl.GetChannel(ChannelDebug) }

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if logger, exists := cl.channels[channel]; exists {
		return logger
	}
	return cl.channels[ChannelSystem]
}

// WithUser returns a logger with user context
func (cl *ChanneledLogger) WithUser(channel Channel, userID string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("userId", cl.sanitizeUserID(userID)))
}

// WithContext returns a logger carrying the request id stored in ctx, if any.
func (cl *ChanneledLogger) WithContext(channel Channel, ctx context.Context) *slog.Logger {
	logger := cl.GetChannel(channel)
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.With(slog.String("requestId", requestID))
	}
	return logger
}

type contextKey string

// RequestIDKey is the context key under which the request middleware stores the request id.
const RequestIDKey contextKey = "requestId"

// LogSlowQuery logs a slow database query
func (cl *ChanneledLogger) LogSlowQuery(query string, duration time.Duration) {
	cl.SlowQuery().Warn("Slow query detected",
		slog.String("query", cl.sanitizeQuery(query)),
		slog.Duration("duration", duration),
	)
}

// LogAuthOperation logs authentication operations with security context
func (cl *ChanneledLogger) LogAuthOperation(operation, userID string, success bool, metadata map[string]any) {
	logger := cl.Auth().With(
		slog.String("operation", operation),
		slog.String("userId", cl.sanitizeUserID(userID)),
		slog.Bool("success", success),
	)
	for key, value := range metadata {
		logger = logger.With(slog.Any(key, value))
	}

	if success {
		logger.Info("Authentication operation completed")
	} else {
		logger.Warn("Authentication operation failed")
	}
}

// LogError logs an error with appropriate context and channel
func (cl *ChanneledLogger) LogError(channel Channel, operation string, err error, metadata map[string]any) {
	logger := cl.GetChannel(channel).With(
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	for key, value := range metadata {
		logger = logger.With(slog.Any(key, value))
	}
	logger.Error("Operation failed")
}

func (cl *ChanneledLogger) sanitizeQuery(query string) string {
	query = strings.ReplaceAll(query, "\n", " ")
	query = strings.ReplaceAll(query, "\t", " ")
	if len(query) > 500 {
		query = query[:500] + "..."
	}
	return query
}

// sanitizeUserID partially masks user IDs for privacy
func (cl *ChanneledLogger) sanitizeUserID(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	if len(userID) <= 4 {
		return "****"
	}
	return userID[:2] + "****" + userID[len(userID)-2:]
}

// SanitizeSessionID partially masks session IDs for privacy
func (cl *ChanneledLogger) SanitizeSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return "********"
	}
	return sessionID[:4] + "****" + sessionID[len(sessionID)-4:]
}

// Close releases the log files opened for file output.
func (cl *ChanneledLogger) Close() error {
	cl.System().Info("Channeled logger shutting down")
	var firstErr error
	for _, file := range cl.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetChannelLevel dynamically sets the log level for a specific channel
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.channels[channel]; !exists {
		return fmt.Errorf("channel %s does not exist", channel)
	}

	cl.config.ChannelLevels[channel] = level
	newLogger, err := cl.createChannelLogger(channel)
	if err != nil {
		return fmt.Errorf("failed to recreate logger for channel %s: %w", channel, err)
	}
	cl.channels[channel] = newLogger
	return nil
}

// GetChannelLevels returns the current log levels for all channels.
func (cl *ChanneledLogger) GetChannelLevels() map[string]string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	levels := make(map[string]string, len(cl.channels))
	for channel := range cl.channels {
		if level, ok := cl.config.ChannelLevels[channel]; ok {
			levels[string(channel)] = level.String()
		} else {
			levels[string(channel)] = cl.config.DefaultLevel.String()
		}
	}
	return levels
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG", "TRACE":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "FATAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
