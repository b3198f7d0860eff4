package auth

import (
	"context"
	"regexp"
	"strings"
	"sync"

	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/security"
)

// Session describes who is signed in. IsAnonymous marks the implicit
// device user of the local backend before any account exists.
type Session struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Credentials pairs the session identity with the bearer token the
// client presents on subsequent requests.
type Credentials struct {
	Session     Session `json:"session"`
	AccessToken string  `json:"accessToken"`
}

// Gateway is the authentication contract. The remote implementation is
// backed by the users table and redis sessions; the local one by a
// device-storage credential table.
type Gateway interface {
	// SignUp creates the account and opens a session.
	SignUp(ctx context.Context, email, password string) (*Credentials, error)

	// SignIn verifies the credentials and opens a session.
	SignIn(ctx context.Context, email, password string) (*Credentials, error)

	// SignOut revokes the session behind the token. Unknown tokens are
	// a no-op.
	SignOut(ctx context.Context, accessToken string) error

	// OnSessionChange registers a callback fired with the new session
	// after every sign-in/out (nil on sign-out), starting with the
	// currently known state. The returned func unregisters it.
	OnSessionChange(fn func(*Session)) func()
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail lowercases and trims; empty or malformed input is an
// InvalidEmail error.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(normalized) {
		return "", pkgerrors.New(pkgerrors.CodeInvalidEmail, "invalid email address")
	}
	return normalized, nil
}

// CheckPasswordStrength rejects passwords under the minimum length.
func CheckPasswordStrength(password string) error {
	if len(password) < security.MinPasswordLength {
		return pkgerrors.New(pkgerrors.CodeWeakPassword, "password must contain at least 6 characters")
	}
	return nil
}

// DisplayNameFromEmail derives the default display name: the local
// part of the address.
func DisplayNameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// notifier fans session changes out to registered callbacks and
// replays the latest state to new subscribers.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*Session)
	current   *Session
}

func newNotifier(initial *Session) *notifier {
	return &notifier{listeners: make(map[int]func(*Session)), current: initial}
}

func (n *notifier) subscribe(fn func(*Session)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	current := n.current
	n.mu.Unlock()

	fn(current)

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *notifier) emit(session *Session) {
	n.mu.Lock()
	n.current = session
	fns := make([]func(*Session), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}
