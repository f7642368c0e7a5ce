package contact

import (
	"time"

	"github.com/google/uuid"
	"github.com/kapu/higapro-site/internal/constants"
)

type NotificationKind string

const (
	NotificationLoading NotificationKind = "loading"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a toast. A zero AutoClose keeps it open until it is updated.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Message   string
	AutoClose time.Duration
}

// Notifier shows a notification, replacing any earlier one with the same ID.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

func sending() Notification {
	return Notification{
		ID:      uuid.NewString(),
		Kind:    NotificationLoading,
		Message: constants.Toast.Sending,
	}
}

func (n Notification) settle(ok bool) Notification {
	n.AutoClose = constants.Toast.AutoClose
	if ok {
		n.Kind = NotificationSuccess
		n.Message = constants.Toast.Sent
	} else {
		n.Kind = NotificationError
		n.Message = constants.Toast.Failed
	}
	return n
}
