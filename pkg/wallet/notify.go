package wallet

import "go.uber.org/zap"

// Level classifies a user-visible notification.
type Level int

const (
	// LevelInfo marks a success or neutral notification.
	LevelInfo Level = iota
	// LevelError marks a failure notification.
	LevelError
)

// Notification is a transient, user-visible message. Every wallet lifecycle
// transition and every mutation outcome produces one.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier receives user-visible notifications. Implementations must not
// block; the SDK calls Notify from operation goroutines.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// ZapNotifier returns the default Notifier, which writes notifications to
// the global zap logger.
func ZapNotifier() Notifier { return zapNotifier{} }

// zapNotifier is the default Notifier; it writes notifications to the
// global zap logger.
type zapNotifier struct{}

func (zapNotifier) Notify(n Notification) {
	if n.Level == LevelError {
		zap.L().Error(n.Title, zap.String("message", n.Message))
		return
	}
	zap.L().Info(n.Title, zap.String("message", n.Message))
}
