package view

import (
	"io"
	"sync"
)

// Expirer drops the in-memory sign-in state, reporting whether a user was
// signed in at the time.
type Expirer interface {
	Expire() bool
}

// Alerts turns transport-level signals into user-facing notices. It
// implements the client's notifier contract; the session expiry notice is
// printed at most once per actual sign-out no matter how many concurrent
// requests hit the same dead session.
type Alerts struct {
	r *Renderer

	mu   sync.Mutex
	sess Expirer
}

// NewAlerts builds the notifier writing to out.
func NewAlerts(out io.Writer, noColor bool) *Alerts {
	return &Alerts{r: NewRenderer(out, noColor)}
}

// Bind attaches the session used to deduplicate expiry notices. Before
// binding, every expiry signal prints.
func (a *Alerts) Bind(sess Expirer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = sess
}

// Forbidden reports a permission rejection.
func (a *Alerts) Forbidden(method, path string) {
	a.r.Notice("You do not have permission for this action.")
}

// ServerError reports a backend failure.
func (a *Alerts) ServerError(method, path string, status int) {
	a.r.Error("The server could not handle %s %s (status %d). Try again later.", method, path, status)
}

// SessionExpired reports the end of the session, once.
func (a *Alerts) SessionExpired() {
	a.mu.Lock()
	sess := a.sess
	a.mu.Unlock()
	if sess != nil && !sess.Expire() {
		return
	}
	a.r.Notice("Your session has expired. Sign in again with 'otaku login'.")
}
