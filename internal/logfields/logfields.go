package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID    = "run_id"
	KeyCommand  = "command"
	KeySlug     = "slug"
	KeyFile     = "file"
	KeyPath     = "path"
	KeyStatus   = "status"
	KeyCount    = "count"
	KeyURL      = "url"
	KeySlot     = "slot"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr     { return slog.String(KeyRunID, id) }
func Command(name string) slog.Attr { return slog.String(KeyCommand, name) }
func Slug(s string) slog.Attr       { return slog.String(KeySlug, s) }
func File(f string) slog.Attr       { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Status(s string) slog.Attr     { return slog.String(KeyStatus, s) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Slot(s string) slog.Attr       { return slog.String(KeySlot, s) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDuration, float64(d)/float64(time.Millisecond))
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
