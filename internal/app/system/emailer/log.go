package emailer

import (
	"context"

	"go.uber.org/zap"
)

// Log writes messages to the logger instead of sending them. It is the
// development default.
type Log struct {
	logger *zap.Logger
}

// NewLog creates the logging provider.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Name implements Sender.
func (l *Log) Name() string { return ProviderLog }

// Send implements Sender.
func (l *Log) Send(ctx context.Context, msg Message) error {
	fields := []zap.Field{
		zap.String("kind", msg.Kind),
		zap.String("reference", msg.Reference),
	}
	for k, v := range msg.Params {
		if k == ParamMessage {
			fields = append(fields, zap.Int("message_len", len(v)))
			continue
		}
		fields = append(fields, zap.String(k, v))
	}
	l.logger.Info("email not sent (log provider)", fields...)
	return nil
}
