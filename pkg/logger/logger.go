package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// OrderedJSONFormatter renders entries as JSON with a fixed field order so
// the level and request id always lead the line.
type OrderedJSONFormatter struct {
	TimestampFormat string
	PrettyPrint     bool
	SortKeys        bool
}

// Format implements logrus.Formatter
func (f *OrderedJSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(logrus.Fields)
	for k, v := range entry.Data {
		data[k] = v
	}

	var orderedKeys []string
	orderedFields := make(map[string]interface{})

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	}

	fixedFields := []struct {
		key   string
		value interface{}
	}{
		{"timestamp", entry.Time.Format(timestampFormat)},
		{"level", strings.ToUpper(entry.Level.String())},
		{"request_id", nil},
		{"message", entry.Message},
		{"merchant_id", nil},
	}

	for _, field := range fixedFields {
		if field.value != nil {
			orderedKeys = append(orderedKeys, field.key)
			orderedFields[field.key] = field.value
		} else if value, exists := data[field.key]; exists {
			orderedKeys = append(orderedKeys, field.key)
			orderedFields[field.key] = value
			delete(data, field.key)
		}
	}

	priorityFields := []string{
		"method",
		"path",
		"status",
		"duration_ms",
		"queue_id",
		"component",
		"error",
	}
	for _, field := range priorityFields {
		if value, exists := data[field]; exists {
			orderedKeys = append(orderedKeys, field)
			orderedFields[field] = value
			delete(data, field)
		}
	}

	if f.SortKeys {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			orderedKeys = append(orderedKeys, k)
			orderedFields[k] = data[k]
		}
	} else {
		for k, v := range data {
			orderedKeys = append(orderedKeys, k)
			orderedFields[k] = v
		}
	}

	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString("{")
	if f.PrettyPrint {
		for i, key := range orderedKeys {
			if i > 0 {
				b.WriteString(",\n  ")
			} else {
				b.WriteString("\n  ")
			}
			keyBytes, _ := json.Marshal(key)
			valueBytes, _ := json.Marshal(orderedFields[key])
			b.Write(keyBytes)
			b.WriteString(": ")
			b.Write(valueBytes)
		}
		b.WriteString("\n}")
	} else {
		for i, key := range orderedKeys {
			if i > 0 {
				b.WriteString(",")
			}
			keyBytes, _ := json.Marshal(key)
			valueBytes, _ := json.Marshal(orderedFields[key])
			b.Write(keyBytes)
			b.WriteString(":")
			b.Write(valueBytes)
		}
		b.WriteString("}")
	}
	b.WriteString("\n")
	return b.Bytes(), nil
}

// ColoredTextFormatter is the development console formatter
type ColoredTextFormatter struct {
	TimestampFormat string
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorWhite  = "\033[37m"
	colorCyan   = "\033[36m"
)

// Format implements logrus.Formatter
func (f *ColoredTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelColor string
	var levelText string

	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = colorRed
		levelText = "ERROR"
	case logrus.WarnLevel:
		levelColor = colorYellow
		levelText = "WARN "
	case logrus.InfoLevel:
		levelColor = colorGreen
		levelText = "INFO "
	case logrus.DebugLevel:
		levelColor = colorBlue
		levelText = "DEBUG"
	default:
		levelColor = colorWhite
		levelText = "TRACE"
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = "2006-01-02 15:04:05"
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s[%s]%s %s%s%s %s%s%s",
		levelColor, levelText, colorReset,
		colorCyan, entry.Time.Format(timestampFormat), colorReset,
		colorWhite, entry.Message, colorReset,
	))

	if len(entry.Data) > 0 {
		buf.WriteString(" ")
		for k, v := range entry.Data {
			buf.WriteString(fmt.Sprintf("%s%s%s=%v ", colorBlue, k, colorReset, v))
		}
	}

	buf.WriteString("\n")
	return buf.Bytes(), nil
}

var (
	appLogger     *logrus.Logger
	appLoggerOnce sync.Once
	logFile       io.WriteCloser
	logMutex      sync.Mutex
)

// LogConfig holds logger settings
type LogConfig struct {
	BaseDir         string `json:"base_dir"`
	MaxSize         int    `json:"max_size"`
	MaxBackups      int    `json:"max_backups"`
	MaxAge          int    `json:"max_age"`
	Compress        bool   `json:"compress"`
	Level           string `json:"level"`
	Format          string `json:"format"`
	PrettyPrint     bool   `json:"pretty_print"`
	SortKeys        bool   `json:"sort_keys"`
	TimestampFormat string `json:"timestamp_format"`
}

// DefaultLogConfig returns the default logger settings
func DefaultLogConfig() LogConfig {
	return LogConfig{
		BaseDir:         "./logs",
		MaxSize:         100,
		MaxBackups:      30,
		MaxAge:          90,
		Compress:        true,
		Level:           "info",
		Format:          "json",
		PrettyPrint:     false,
		SortKeys:        false,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// GetLogger returns the singleton logrus logger with daily file rotation
func GetLogger() *logrus.Logger {
	appLoggerOnce.Do(func() {
		config := DefaultLogConfig()

		if format := os.Getenv("LOG_FORMAT"); format != "" {
			config.Format = format
		}
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			config.Level = level
		}
		if dir := os.Getenv("LOG_DIR"); dir != "" {
			config.BaseDir = dir
		}

		appLogger = initLoggerWithConfig(config)
	})
	return appLogger
}

func initLoggerWithConfig(config LogConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch config.Format {
	case "colored", "color":
		logger.SetFormatter(&ColoredTextFormatter{
			TimestampFormat: config.TimestampFormat,
		})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: config.TimestampFormat,
		})
	default:
		logger.SetFormatter(&OrderedJSONFormatter{
			TimestampFormat: config.TimestampFormat,
			PrettyPrint:     config.PrettyPrint,
			SortKeys:        config.SortKeys,
		})
	}

	if config.BaseDir != "" {
		setupDailyLogFile(logger, config)
		go dailyLogRotation(logger, config)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// setupDailyLogFile points the logger at today's rotating log file
func setupDailyLogFile(logger *logrus.Logger, config LogConfig) {
	logMutex.Lock()
	defer logMutex.Unlock()

	now := time.Now()
	dateStr := now.Format("2006/01/02")

	logDir := filepath.Join(config.BaseDir, dateStr)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logger.WithError(err).Error("Failed to create log directory")
		logger.SetOutput(os.Stdout)
		return
	}

	if logFile != nil {
		logFile.Close()
	}

	logPath := filepath.Join(logDir, "app.log")
	lumber := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	logFile = lumber
	logger.SetOutput(io.MultiWriter(lumber, os.Stdout))

	logger.WithField("log_path", logPath).Info("Log file rotated")
}

func dailyLogRotation(logger *logrus.Logger, config LogConfig) {
	for {
		now := time.Now()
		tomorrow := now.AddDate(0, 0, 1)
		midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
		time.Sleep(time.Until(midnight))
		setupDailyLogFile(logger, config)
	}
}

// LoggingMiddleware logs every request with timing and status
func LoggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		res := c.Response()
		log := GetLogger()

		requestID := fmt.Sprintf("%d", start.UnixNano())
		c.Set("request_id", requestID)

		err := next(c)
		duration := time.Since(start)

		logFields := logrus.Fields{
			"request_id":  requestID,
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      res.Status,
			"duration_ms": duration.Milliseconds(),
			"size":        res.Size,
		}

		switch {
		case res.Status >= 500:
			log.WithFields(logFields).Error("Request completed")
		case res.Status >= 400:
			log.WithFields(logFields).Warn("Request completed")
		default:
			log.WithFields(logFields).Info("Request completed")
		}

		if err != nil {
			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Request error occurred")
		}

		return err
	}
}

// RequestLogger returns a per-request logger entry
func RequestLogger(c echo.Context) *logrus.Entry {
	log := GetLogger()
	requestID, ok := c.Get("request_id").(string)
	if !ok {
		requestID = "unknown"
	}

	return log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     c.Request().Method,
		"path":       c.Request().URL.Path,
	})
}

// InitGlobalLogger aligns the global logrus instance with the app logger
func InitGlobalLogger() {
	l := GetLogger()
	logrus.SetFormatter(l.Formatter)
	logrus.SetOutput(l.Out)
	logrus.SetLevel(l.Level)
}
