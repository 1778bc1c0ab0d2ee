package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeySlug       = "slug"
	KeyTag        = "tag"
	KeyURL        = "url"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr    { return slog.String(KeyPath, p) }
func File(f string) slog.Attr    { return slog.String(KeyFile, f) }
func Slug(s string) slog.Attr    { return slog.String(KeySlug, s) }
func Tag(t string) slog.Attr     { return slog.String(KeyTag, t) }
func URL(u string) slog.Attr     { return slog.String(KeyURL, u) }
func Count(n int) slog.Attr      { return slog.Int(KeyCount, n) }
func Subject(s string) slog.Attr { return slog.String(KeySubject, s) }

func DurationMS(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000.0)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
