package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTarget     = "target"
	KeyGroup      = "group"
	KeyEntityID   = "entity_id"
	KeyWidget     = "widget"
	KeyGenerator  = "generator"
	KeyArtifact   = "artifact"
	KeyTemplate   = "template"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Target(name string) slog.Attr      { return slog.String(KeyTarget, name) }
func Group(name string) slog.Attr       { return slog.String(KeyGroup, name) }
func EntityID(id string) slog.Attr      { return slog.String(KeyEntityID, id) }
func Widget(name string) slog.Attr      { return slog.String(KeyWidget, name) }
func Generator(name string) slog.Attr   { return slog.String(KeyGenerator, name) }
func Artifact(path string) slog.Attr    { return slog.String(KeyArtifact, path) }
func Template(name string) slog.Attr    { return slog.String(KeyTemplate, name) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
