package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
	"github.com/google/uuid"
)

// Device-storage slots of the local credential table and the single
// persisted session.
const (
	UsersSlot   = "local_app_users"
	SessionSlot = "local_app_session"
)

const (
	localMaxAttempts   = 5
	localAttemptWindow = time.Minute
)

// localUser is one row of the device credential table. Passwords stay
// in clear text: the table only gates a single-user device profile,
// matching the original app's local mode.
type localUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
}

type localSession struct {
	Session Session `json:"session"`
	Token   string  `json:"token"`
}

// LocalGateway authenticates against the device credential table.
type LocalGateway struct {
	store  *localstore.Store
	notify *notifier

	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewLocalGateway builds the device-local gateway. A session persisted
// by a previous run is restored as the initial state.
func NewLocalGateway(store *localstore.Store) (*LocalGateway, error) {
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}

	var restored localSession
	found, err := store.Get(SessionSlot, &restored)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	var initial *Session
	if found {
		initial = &restored.Session
	}

	return &LocalGateway{
		store:    store,
		notify:   newNotifier(initial),
		attempts: make(map[string][]time.Time),
	}, nil
}

func (g *LocalGateway) loadUsers() ([]localUser, error) {
	var users []localUser
	if _, err := g.store.Get(UsersSlot, &users); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read credential slot")
	}
	return users, nil
}

// SignUp adds a row to the credential table and opens a session.
func (g *LocalGateway) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := CheckPasswordStrength(password); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	users, err := g.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Email == normalized {
			return nil, pkgerrors.New(pkgerrors.CodeEmailInUse, "email already in use")
		}
	}

	user := localUser{
		ID:          strconv.FormatInt(time.Now().UnixMilli(), 10),
		Email:       normalized,
		Password:    password,
		DisplayName: DisplayNameFromEmail(normalized),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := g.store.Put(UsersSlot, append(users, user)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "write credential slot")
	}

	return g.openSession(user)
}

// SignIn checks the table, throttling repeated failures per email.
func (g *LocalGateway) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.throttled(normalized) {
		return nil, pkgerrors.New(pkgerrors.CodeTooManyAttempts, "too many attempts, retry later")
	}

	users, err := g.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Email != normalized {
			continue
		}
		if user.Password != password {
			g.recordFailure(normalized)
			return nil, pkgerrors.New(pkgerrors.CodeWrongPassword, "wrong password")
		}
		delete(g.attempts, normalized)
		return g.openSession(user)
	}
	g.recordFailure(normalized)
	return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, "no account for this email")
}

// SignOut drops the persisted session when the token matches.
func (g *LocalGateway) SignOut(ctx context.Context, accessToken string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var current localSession
	found, err := g.store.Get(SessionSlot, &current)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read session slot")
	}
	if !found || current.Token != accessToken {
		return nil
	}
	if err := g.store.Delete(SessionSlot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "clear session slot")
	}
	g.notify.emit(nil)
	return nil
}

// OnSessionChange registers a session observer.
func (g *LocalGateway) OnSessionChange(fn func(*Session)) func() {
	return g.notify.subscribe(fn)
}

// SessionForToken resolves the bearer token the local middleware sees.
func (g *LocalGateway) SessionForToken(accessToken string) (*Session, bool, error) {
	var current localSession
	found, err := g.store.Get(SessionSlot, &current)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read session slot")
	}
	if !found || current.Token != accessToken {
		return nil, false, nil
	}
	return &current.Session, true, nil
}

func (g *LocalGateway) openSession(user localUser) (*Credentials, error) {
	sess := Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
	token := uuid.NewString()
	if err := g.store.Put(SessionSlot, localSession{Session: sess, Token: token}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "write session slot")
	}
	g.notify.emit(&sess)
	return &Credentials{Session: sess, AccessToken: token}, nil
}

func (g *LocalGateway) throttled(email string) bool {
	cutoff := time.Now().Add(-localAttemptWindow)
	recent := g.attempts[email][:0]
	for _, at := range g.attempts[email] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	g.attempts[email] = recent
	return len(recent) >= localMaxAttempts
}

func (g *LocalGateway) recordFailure(email string) {
	g.attempts[email] = append(g.attempts[email], time.Now())
}
