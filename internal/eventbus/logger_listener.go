package eventbus

import (
	"context"

	"github.com/annel0/voxel-arena/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог шины.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus, logger *logging.Logger) (Subscription, error) {
	if logger == nil {
		logger = logging.GetEventBusLogger()
	}
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if ev.Priority >= PriorityCritical {
			logger.Info("🏁 %s (%s)", ev.EventType, ev.CorrelationID)
			return
		}
		logger.Debug("%s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	logger.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
