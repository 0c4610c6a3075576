package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// 既定のロガー。main で SetDefault により差し替える
var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(NewLogger("info", "text", os.Stderr))
}

// NewLogger はレベルと形式 (text / json) を指定して構造化ロガーを作成します
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel はログレベル文字列を slog.Level に変換します。不明な値は info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault は既定のロガーを差し替えます
func SetDefault(logger *slog.Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// Logger は既定のロガーを返します
func Logger() *slog.Logger {
	return defaultLogger.Load()
}

// LogInfo は情報レベルのメッセージをログに記録します
func LogInfo(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// LogWarn は警告レベルのメッセージをログに記録します
func LogWarn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// LogError はエラーレベルのメッセージをログに記録します
func LogError(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// TrackTime は関数の実行時間を計測して出力するユーティリティです
func TrackTime(start time.Time, name string) {
	LogInfo("完了", "task", name, "elapsed", time.Since(start))
}
