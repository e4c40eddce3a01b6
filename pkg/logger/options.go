package logger

import (
	"io"
	"log/slog"
)

// Option configures a logger built by New.
type Option func(*config)

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithDebug is WithLevel(slog.LevelDebug) when debug is set, and Info
// otherwise. Commands wire their --debug flag to it.
func WithDebug(debug bool) Option {
	if debug {
		return WithLevel(slog.LevelDebug)
	}
	return WithLevel(slog.LevelInfo)
}

// WithPretty selects the colorized charmbracelet/log handler used for
// terminal output. Passing false falls back to plain text.
func WithPretty(pretty bool) Option {
	return withFormat(formatPretty, pretty)
}

// WithJSON selects one JSON object per record, the format written to
// --log-file. Passing false falls back to plain text.
func WithJSON(json bool) Option {
	return withFormat(formatJSON, json)
}

// withFormat switches to f, or back to text when on is false and f is the
// current format. The last format option wins.
func withFormat(f format, on bool) Option {
	return func(c *config) {
		switch {
		case on:
			c.format = f
		case c.format == f:
			c.format = formatText
		}
	}
}

// WithWriter replaces the destination. New writes to os.Stdout without one;
// commands pass the command's stderr so logs stay out of chat replies.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters replaces the destination with several writers that each get
// every record.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource reports the calling file and line.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
