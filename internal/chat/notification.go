package chat

// Variant selects how a notification is styled.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient, non-blocking alert.
type Notification struct {
	Variant     Variant
	Title       string
	Description string
}

// Text shown when a submission fails, whatever the cause.
const (
	FailureTitle       = "Failed to get a reply"
	FailureDescription = "Please check your message and try again"
)

// FailureNotification is the single notification used for every request failure.
func FailureNotification() Notification {
	return Notification{
		Variant:     VariantDestructive,
		Title:       FailureTitle,
		Description: FailureDescription,
	}
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// Refresher re-derives server-provided data after a submission attempt. It
// must not touch the conversation.
type Refresher interface {
	Refresh()
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func()

func (f RefresherFunc) Refresh() { f() }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

type nopRefresher struct{}

func (nopRefresher) Refresh() {}
