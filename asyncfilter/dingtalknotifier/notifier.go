// Package dingtalknotifier adapts an HMAC-signed DingTalk webhook client
// into an asyncfilter.Notifier, so a filter job's begin/error/end
// lifecycle can page an operations chat instead of (or alongside) a log
// line. Grounded on dingtalk/robot.go and dingtalk/message.go, adapted
// from a general-purpose DingTalk client into job-alert-shaped types
// (AlertBot, AlertText, AlertMarkdown, ...).
package dingtalknotifier

import (
	"context"
	"fmt"

	"github.com/onnttf/spsm/asyncfilter"
)

// Notifier sends a DingTalk message on each lifecycle event. Any event
// can be silenced by leaving its corresponding On* hook nil.
type Notifier struct {
	bot *AlertBot

	// OnBegin, when non-nil, formats the message sent when a job starts.
	OnBegin func() Message
	// OnError, when non-nil, formats the message sent when a job errors
	// or is cancelled.
	OnError func(err error) Message
	// OnEnd, when non-nil, formats the message sent when a job finishes,
	// success or not.
	OnEnd func(result *asyncfilter.Result) Message
}

// New returns a Notifier posting through bot. bot is typically built with
// NewAlertBot(accessToken).WithSecret(secret).
func New(bot *AlertBot) *Notifier {
	return &Notifier{bot: bot}
}

// NotifyBegin implements asyncfilter.Notifier.
func (n *Notifier) NotifyBegin(ctx context.Context) {
	if n.OnBegin == nil {
		return
	}
	n.send(ctx, n.OnBegin())
}

// NotifyError implements asyncfilter.Notifier.
func (n *Notifier) NotifyError(ctx context.Context, err error) {
	if n.OnError == nil {
		return
	}
	n.send(ctx, n.OnError(err))
}

// NotifyEnd implements asyncfilter.Notifier.
func (n *Notifier) NotifyEnd(ctx context.Context, result *asyncfilter.Result) {
	if n.OnEnd == nil {
		return
	}
	n.send(ctx, n.OnEnd(result))
}

func (n *Notifier) send(ctx context.Context, msg Message) {
	if msg == nil {
		return
	}
	// Notification delivery is best-effort: a webhook outage must never
	// surface as a filter error, so the send error is swallowed here.
	_ = n.bot.SendWithContext(ctx, msg)
}

// DefaultErrorMessage builds a plain-text message describing a job
// error, a reasonable OnError default for callers who don't need a
// custom format.
func DefaultErrorMessage(err error) Message {
	return NewAlertText(fmt.Sprintf("spsm filter job failed: %v", err))
}
