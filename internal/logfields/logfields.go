package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyLocale     = "locale"
	KeyRoute      = "route"
	KeyCourse     = "course"
	KeyLesson     = "lesson"
	KeyPath       = "path"
	KeyComponent  = "component"
	KeyStatus     = "status"
	KeyMethod     = "method"
	KeyDurationMS = "duration_ms"
	KeyRequestID  = "request_id"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

func Locale(l string) slog.Attr       { return slog.String(KeyLocale, l) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Course(c string) slog.Attr       { return slog.String(KeyCourse, c) }
func Lesson(l string) slog.Attr       { return slog.String(KeyLesson, l) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
