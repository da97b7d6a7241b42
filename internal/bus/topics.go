package bus

// Topics published by the synchronization core.
const (
	// TopicToast carries user-facing notifications (ToastEvent).
	TopicToast = "notify.toast"
	// TopicRowsUpdated announces that a view's row set changed after a
	// reconcile pass (RowsUpdatedEvent).
	TopicRowsUpdated = "view.rows_updated"
	// TopicAuthExpired is published at most once per process when any
	// request comes back 401 (AuthExpiredEvent).
	TopicAuthExpired = "auth.expired"
	// TopicConfigReloaded signals that config.yaml changed on disk.
	TopicConfigReloaded = "config.reloaded"
)

// ToastEvent is a fire-and-forget user notification.
type ToastEvent struct {
	Severity string // "success", "warning", "error"
	Message  string
}

// RowsUpdatedEvent summarizes one applied reconcile plan.
type RowsUpdatedEvent struct {
	ViewID   string
	Updated  int
	Inserted int
	Removed  int
}

// AuthExpiredEvent asks the UI to switch to the login view. The UI
// records the view path the user was on when it receives this, so
// login can return there; the publisher only knows which session hit
// the 401, which is not the same thing.
type AuthExpiredEvent struct{}
