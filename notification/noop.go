package notification

import (
	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/logger"
)

// Noop is the notifier used when Telegram is disabled. Lifecycle messages
// still reach the log.
type Noop struct {
	log logger.Logger
}

// NewNoop creates a log-only notifier
func NewNoop(log logger.Logger) *Noop {
	return &Noop{log: log}
}

// Notify logs the message instead of delivering it
func (n *Noop) Notify(text string) {
	n.log.Info(text)
}

// OnOrder logs the order event
func (n *Noop) OnOrder(order core.Order) {
	n.log.Info(order.String())
}

// OnError logs the error
func (n *Noop) OnError(err error) {
	n.log.Error(err)
}
