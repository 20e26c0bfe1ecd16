// Package notification provides implementations for the outbound
// notification channel used to report trade lifecycle events.
package notification

import (
	"fmt"
	"time"

	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/logger"

	tb "gopkg.in/tucnak/telebot.v2"
)

// Telegram implements the core.Notifier interface over the Telegram bot
// API. Delivery is best-effort: failures are logged and swallowed.
type Telegram struct {
	client *tb.Bot
	users  []int
	log    logger.Logger
}

// NewTelegram creates and initializes a new Telegram notifier
func NewTelegram(token string, users []int, log logger.Logger) (*Telegram, error) {
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     token,
		Poller:    &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{
		client: client,
		users:  users,
		log:    log,
	}, nil
}

// Notify sends a message to all configured users
func (t *Telegram) Notify(text string) {
	for _, user := range t.users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			t.log.WithError(err).Error("failed to send notification")
		}
	}
}

// OnOrder sends a notification about an order event
func (t *Telegram) OnOrder(order core.Order) {
	title := ""
	switch order.Status {
	case core.OrderStatusTypeFilled:
		title = fmt.Sprintf("✅ Order filled - %s", order.Pair)
	case core.OrderStatusTypeNew:
		title = fmt.Sprintf("🆕 New order - %s", order.Pair)
	case core.OrderStatusTypeCanceled, core.OrderStatusTypeRejected:
		title = fmt.Sprintf("❌ Order canceled / rejected - %s", order.Pair)
	}

	t.Notify(fmt.Sprintf("%s\n-----\n%s", title, order))
}

// OnError sends a notification about an error
func (t *Telegram) OnError(err error) {
	t.Notify(fmt.Sprintf("🛑 ERROR\n-----\n%s", err))
}
