package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

func levelStyle(label string, color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(label).
		Bold(true).
		Padding(0, 1).
		Foreground(color)
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = levelStyle("ERROR", errorColor)
	styles.Levels[log.WarnLevel] = levelStyle("WARN", warnColor)
	styles.Levels[log.InfoLevel] = levelStyle("INFO", infoColor)
	styles.Levels[log.DebugLevel] = levelStyle("DEBUG", debugColor)

	styles.Keys["error"] = lipgloss.NewStyle().Foreground(errorColor)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	for _, key := range []string{"user_id", "staff_id", "account_id", "proposal_id"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(infoColor)
	}
	styles.Keys["status"] = lipgloss.NewStyle().Foreground(warnColor)
	return styles
}

// NewLogger builds the process logger: a charmbracelet/log handler behind slog.
func NewLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", Prefix: "[brokerage]"}
	}
	if w == nil {
		w = os.Stdout
	}

	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(logStyles())
	return slog.New(handler)
}

func setupLogger(cfg *config.Log) *slog.Logger {
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}
