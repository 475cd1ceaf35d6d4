package registry

import (
	"context"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log. It is used when no host UI is reachable.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification at the level matching its severity.
func (n *LogNotifier) Notify(_ context.Context, title, message string, severity models.Severity) error {
	fields := []zap.Field{zap.String("title", title), zap.String("message", message)}
	switch severity {
	case models.SeverityError:
		n.logger.Error("Notification", fields...)
	case models.SeverityWarning:
		n.logger.Warn("Notification", fields...)
	default:
		n.logger.Info("Notification", fields...)
	}
	return nil
}
