// Package identity keeps the signed-in learner's identity in memory and
// mirrors it to local storage so a restarted session can restore it.
package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Persisted keys. Logout clears all of them together.
const (
	KeyAuthToken        = "authToken"
	KeyUserRole         = "userRole"
	KeyUsername         = "username"
	KeyUserID           = "userId"
	KeyCoins            = "coins"
	KeyCompletedQuizzes = "completedQuizzes"
)

// AllKeys lists every persisted key.
var AllKeys = []string{KeyAuthToken, KeyUserRole, KeyUsername, KeyUserID, KeyCoins, KeyCompletedQuizzes}

var ErrNegativeCoins = errors.New("coin balance cannot be negative")

// Identity is the signed-in learner.
type Identity struct {
	AuthToken        string
	Role             string
	Username         string
	UserID           string
	Coins            int
	CompletedQuizzes []string
}

// LoggedIn reports whether a token and user id are present.
func (i Identity) LoggedIn() bool {
	return i.AuthToken != "" && i.UserID != ""
}

func (i Identity) HasCompleted(quizID string) bool {
	for _, id := range i.CompletedQuizzes {
		if id == quizID {
			return true
		}
	}
	return false
}

func (i Identity) clone() Identity {
	out := i
	out.CompletedQuizzes = append([]string(nil), i.CompletedQuizzes...)
	return out
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	AuthToken        *string
	Role             *string
	Username         *string
	UserID           *string
	Coins            *int
	CompletedQuizzes []string
}

// Change is one externally observed mirror change. Cleared means every
// key was removed, e.g. by a logout in another session.
type Change struct {
	Key     string
	Value   string
	Cleared bool
}

// Mirror persists identity fields as string key/value pairs.
type Mirror interface {
	Load(ctx context.Context) (map[string]string, error)
	// Write stores the given fields, leaving other keys untouched.
	Write(ctx context.Context, fields map[string]string) error
	Clear(ctx context.Context) error
}

// Watcher is implemented by mirrors that can report changes made by other
// sessions. Changes written through the same mirror are not reported.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Store is the in-memory identity backed by a Mirror. Data flows one way:
// server responses are applied with Save/Update and mirrored out; changes
// from other sessions come back in through Reconcile.
type Store struct {
	mu        sync.RWMutex
	mirror    Mirror
	current   Identity
	listeners []func(Identity)
	log       *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a store. A nil mirror keeps the identity in memory only.
func NewStore(mirror Mirror, opts ...Option) *Store {
	s := &Store{mirror: mirror, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the store from the mirror.
func (s *Store) Load(ctx context.Context) (Identity, error) {
	if s.mirror == nil {
		return s.Identity(), nil
	}
	fields, err := s.mirror.Load(ctx)
	if err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	s.current = decode(fields)
	id := s.current.clone()
	s.mu.Unlock()
	return id, nil
}

// Identity returns a copy of the current identity.
func (s *Store) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Save replaces the identity and mirrors every field.
func (s *Store) Save(ctx context.Context, id Identity) error {
	if id.Coins < 0 {
		return ErrNegativeCoins
	}
	s.mu.Lock()
	s.current = id.clone()
	s.mu.Unlock()

	s.notify()
	return s.write(ctx, encode(id))
}

// Update merges p and mirrors only the changed fields.
func (s *Store) Update(ctx context.Context, p Patch) error {
	if p.Coins != nil && *p.Coins < 0 {
		return ErrNegativeCoins
	}

	changed := make(map[string]string)
	s.mu.Lock()
	if p.AuthToken != nil && *p.AuthToken != s.current.AuthToken {
		s.current.AuthToken = *p.AuthToken
		changed[KeyAuthToken] = *p.AuthToken
	}
	if p.Role != nil && *p.Role != s.current.Role {
		s.current.Role = *p.Role
		changed[KeyUserRole] = *p.Role
	}
	if p.Username != nil && *p.Username != s.current.Username {
		s.current.Username = *p.Username
		changed[KeyUsername] = *p.Username
	}
	if p.UserID != nil && *p.UserID != s.current.UserID {
		s.current.UserID = *p.UserID
		changed[KeyUserID] = *p.UserID
	}
	if p.Coins != nil && *p.Coins != s.current.Coins {
		s.current.Coins = *p.Coins
		changed[KeyCoins] = strconv.Itoa(*p.Coins)
	}
	if p.CompletedQuizzes != nil {
		s.current.CompletedQuizzes = append([]string(nil), p.CompletedQuizzes...)
		changed[KeyCompletedQuizzes] = strings.Join(p.CompletedQuizzes, ",")
	}
	s.mu.Unlock()

	if len(changed) == 0 {
		return nil
	}
	s.notify()
	return s.write(ctx, changed)
}

// SetCoins stores a server-confirmed balance.
func (s *Store) SetCoins(ctx context.Context, coins int) error {
	return s.Update(ctx, Patch{Coins: &coins})
}

// MarkCompleted adds quizID to the completed set. The membership check and
// the append happen under one write lock so concurrent completions are kept.
func (s *Store) MarkCompleted(ctx context.Context, quizID string) error {
	s.mu.Lock()
	if s.current.HasCompleted(quizID) {
		s.mu.Unlock()
		return nil
	}
	s.current.CompletedQuizzes = append(s.current.CompletedQuizzes, quizID)
	value := strings.Join(s.current.CompletedQuizzes, ",")
	s.mu.Unlock()

	s.notify()
	return s.write(ctx, map[string]string{KeyCompletedQuizzes: value})
}

// ReplaceCompleted replaces the completed set, typically from a progress summary.
func (s *Store) ReplaceCompleted(ctx context.Context, quizIDs []string) error {
	if quizIDs == nil {
		quizIDs = []string{}
	}
	return s.Update(ctx, Patch{CompletedQuizzes: quizIDs})
}

// Clear forgets the identity and removes every persisted key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = Identity{}
	s.mu.Unlock()

	s.notify()
	if s.mirror == nil {
		return nil
	}
	return s.mirror.Clear(ctx)
}

// Reconcile applies a change observed on the mirror. It never writes back.
func (s *Store) Reconcile(ch Change) {
	s.mu.Lock()
	switch {
	case ch.Cleared:
		s.current = Identity{}
	case ch.Key == KeyCoins:
		coins, err := strconv.Atoi(ch.Value)
		if err != nil || coins < 0 {
			s.mu.Unlock()
			s.log.Warn("Ignoring invalid coin value from mirror", zap.String("value", ch.Value))
			return
		}
		s.current.Coins = coins
	case ch.Key == KeyCompletedQuizzes:
		s.current.CompletedQuizzes = splitList(ch.Value)
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.log.Debug("Identity reconciled from mirror", zap.String("key", ch.Key), zap.Bool("cleared", ch.Cleared))
	s.notify()
}

// Watch reconciles external changes until ctx is done. It is a no-op when
// the mirror cannot report changes.
func (s *Store) Watch(ctx context.Context) error {
	w, ok := s.mirror.(Watcher)
	if !ok {
		return nil
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for ch := range changes {
			s.Reconcile(ch)
		}
	}()
	return nil
}

// OnChange registers fn to be called with the identity after every change.
func (s *Store) OnChange(fn func(Identity)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := make([]func(Identity), len(s.listeners))
	copy(listeners, s.listeners)
	id := s.current.clone()
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(id)
	}
}

func (s *Store) write(ctx context.Context, fields map[string]string) error {
	if s.mirror == nil {
		return nil
	}
	if err := s.mirror.Write(ctx, fields); err != nil {
		s.log.Error("Failed to mirror identity", zap.Error(err))
		return err
	}
	return nil
}

func encode(id Identity) map[string]string {
	return map[string]string{
		KeyAuthToken:        id.AuthToken,
		KeyUserRole:         id.Role,
		KeyUsername:         id.Username,
		KeyUserID:           id.UserID,
		KeyCoins:            strconv.Itoa(id.Coins),
		KeyCompletedQuizzes: strings.Join(id.CompletedQuizzes, ","),
	}
}

func decode(fields map[string]string) Identity {
	coins, err := strconv.Atoi(fields[KeyCoins])
	if err != nil || coins < 0 {
		coins = 0
	}
	return Identity{
		AuthToken:        fields[KeyAuthToken],
		Role:             fields[KeyUserRole],
		Username:         fields[KeyUsername],
		UserID:           fields[KeyUserID],
		Coins:            coins,
		CompletedQuizzes: splitList(fields[KeyCompletedQuizzes]),
	}
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}
