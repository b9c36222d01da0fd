package watch

// Logger is satisfied by the stdlib log.Logger as well as most structured
// loggers (e.g. zerolog, zap's SugaredLogger). This package takes no direct
// logging dependency; callers wire up whatever they already use.
type Logger interface {
	Printf(format string, args ...any)
	Print(args ...any)
}

// logWrapper wraps a Logger and gracefully degrades to a no-op when it's
// nil, so every internal call site can log unconditionally.
type logWrapper struct {
	log Logger
}

func newLogWrapper(l Logger) *logWrapper {
	return &logWrapper{log: l}
}

func (l *logWrapper) Printf(format string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Printf(format, args...)
}

func (l *logWrapper) Print(args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Print(args...)
}
