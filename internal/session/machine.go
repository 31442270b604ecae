// Package session drives a learner through one quiz at a time: selection,
// the running timer, answer submission, and coin settlement.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/identity"

	"go.uber.org/zap"
)

// State of the machine.
type State int

const (
	StateIdle State = iota
	StateLocked
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocked:
		return "locked"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const DefaultRevealCost = 300

var (
	ErrNoQuiz          = errors.New("no quiz selected")
	ErrNotLocked       = errors.New("quiz already started")
	ErrNotRunning      = errors.New("quiz is not running")
	ErrCompleted       = errors.New("quiz already completed")
	ErrAlreadyRevealed = errors.New("answer already revealed")
	ErrRevealPending   = errors.New("answer reveal in progress")
	ErrDeclined        = errors.New("action cancelled")
	// ErrStale means the quiz was switched or the session closed while a
	// request was in flight. The result was not applied.
	ErrStale = errors.New("session changed while request was in flight")
)

// InsufficientCoinsError reports the shortfall for a reveal.
type InsufficientCoinsError struct {
	Balance int
	Cost    int
}

func (e *InsufficientCoinsError) Error() string {
	return fmt.Sprintf("not enough coins: have %d, need %d", e.Balance, e.Cost)
}

// Shortfall is how many more coins are needed.
func (e *InsufficientCoinsError) Shortfall() int {
	return e.Cost - e.Balance
}

// ProgressRecorder records a submitted answer.
type ProgressRecorder interface {
	RecordAnswer(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error)
}

// CoinLedger applies additive or subtractive balance changes and returns
// the new balance.
type CoinLedger interface {
	UpdateCoins(ctx context.Context, userID string, amount int, op domain.CoinOperation) (int, error)
}

// Confirmer asks the learner to confirm an action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) bool { return true })

// Wallet is the identity state the machine reads and updates.
type Wallet interface {
	Identity() identity.Identity
	SetCoins(ctx context.Context, coins int) error
	MarkCompleted(ctx context.Context, quizID string) error
}

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	Quiz     *domain.Quiz
	State    State
	Answer   string
	Elapsed  int
	Revealed bool
}

func (s Snapshot) Running() bool   { return s.State == StateRunning }
func (s Snapshot) Locked() bool    { return s.State == StateLocked }
func (s Snapshot) Completed() bool { return s.State == StateCompleted }

// Result describes the outcome of a submission.
type Result struct {
	Correct          bool
	AlreadyCompleted bool
	// Credited is the reward added to the balance, 0 when none was.
	Credited int
	Elapsed  int
}

// Machine is the quiz interaction state machine for one learner session.
// Timer ticks arrive on another goroutine, so all state is guarded by mu.
type Machine struct {
	mu sync.Mutex

	progress ProgressRecorder
	coins    CoinLedger
	wallet   Wallet
	confirm  Confirmer
	timers   TimerFactory
	log      *zap.Logger

	revealCost int
	interval   time.Duration

	quiz      *domain.Quiz
	state     State
	answer    string
	elapsed   int
	revealed  bool
	revealing bool
	timer     Timer
	// gen changes on every selection and on Close. Results of requests
	// started under an older generation are dropped.
	gen    uint64
	closed bool
}

// Option configures a Machine.
type Option func(*Machine)

func WithConfirmer(c Confirmer) Option {
	return func(m *Machine) { m.confirm = c }
}

func WithTimerFactory(f TimerFactory) Option {
	return func(m *Machine) { m.timers = f }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithRevealCost overrides the price of revealing an answer.
func WithRevealCost(revealCost int) Option {
	return func(m *Machine) { m.revealCost = revealCost }
}

// NewMachine creates an idle machine.
func NewMachine(progress ProgressRecorder, coins CoinLedger, wallet Wallet, opts ...Option) *Machine {
	m := &Machine{
		progress:   progress,
		coins:      coins,
		wallet:     wallet,
		confirm:    AlwaysConfirm,
		timers:     TickerFactory,
		log:        zap.NewNop(),
		revealCost: DefaultRevealCost,
		interval:   time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RevealCost is the price of ShowAnswer.
func (m *Machine) RevealCost() int {
	return m.revealCost
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Quiz:     m.quiz,
		State:    m.state,
		Answer:   m.answer,
		Elapsed:  m.elapsed,
		Revealed: m.revealed,
	}
}

// SelectQuiz makes quiz the active quiz in the Locked state. Any previous
// attempt is discarded without confirmation.
func (m *Machine) SelectQuiz(quiz *domain.Quiz) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveRunning(StateLocked)
	m.gen++
	m.closed = false
	m.quiz = quiz
	m.answer = ""
	m.elapsed = 0
	m.revealed = false
	m.revealing = false
	if quiz == nil {
		m.state = StateIdle
	}
}

// Start unlocks the question and starts the timer.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateIdle:
		return ErrNoQuiz
	case StateRunning:
		return ErrNotLocked
	case StateCompleted:
		return ErrCompleted
	}

	gen := m.gen
	m.state = StateRunning
	m.timer = m.timers(m.interval, func() { m.tick(gen) })
	return nil
}

func (m *Machine) tick(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.gen && m.state == StateRunning {
		m.elapsed++
	}
}

// SetAnswer replaces the answer field.
func (m *Machine) SetAnswer(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateRunning {
		m.answer = s
	}
}

// SubmitAnswer checks raw against the canonical answer and records the
// attempt. A correct answer completes the quiz; the server pays the reward
// the first time and the wallet takes the balance it returns. A wrong
// answer clears the answer field and keeps the timer running.
func (m *Machine) SubmitAnswer(ctx context.Context, raw string) (Result, error) {
	m.mu.Lock()
	if err := m.requireRunning(); err != nil {
		m.mu.Unlock()
		return Result{}, err
	}
	gen, quiz, elapsed := m.gen, m.quiz, m.elapsed
	m.mu.Unlock()

	if !m.confirm.Confirm(ctx, "Submit your answer?") {
		return Result{}, ErrDeclined
	}

	correct := quiz.IsCorrect(raw)
	userID := m.wallet.Identity().UserID
	ack, err := m.progress.RecordAnswer(ctx, userID, quiz.ID, dto.AnswerRequest{
		QuestionID: quiz.ID,
		UserAnswer: raw,
		IsCorrect:  correct,
		TimeSpent:  elapsed,
		Completed:  correct,
	})
	if err != nil {
		m.log.Error("Failed to record answer", zap.String("quizID", quiz.ID), zap.Error(err))
		return Result{}, fmt.Errorf("record answer: %w", err)
	}

	m.mu.Lock()
	if m.stale(gen) {
		m.mu.Unlock()
		return Result{}, ErrStale
	}
	if m.state != StateRunning {
		// a concurrent submission completed the quiz first
		m.mu.Unlock()
		return Result{}, ErrCompleted
	}
	result := Result{Correct: correct, Elapsed: elapsed}
	if !correct {
		m.answer = ""
		m.mu.Unlock()
		return result, nil
	}
	m.answer = raw
	m.leaveRunning(StateCompleted)
	m.mu.Unlock()

	if err := m.wallet.MarkCompleted(ctx, quiz.ID); err != nil {
		m.log.Warn("Failed to persist completed quiz", zap.String("quizID", quiz.ID), zap.Error(err))
	}

	if ack == nil {
		return result, nil
	}
	result.AlreadyCompleted = ack.AlreadyCompleted
	if ack.Credited <= 0 {
		return result, nil
	}
	result.Credited = ack.Credited
	if err := m.wallet.SetCoins(ctx, ack.Coins); err != nil {
		m.log.Warn("Failed to persist coin balance", zap.Error(err))
	}
	return result, nil
}

// ShowAnswer spends the reveal cost and fills the answer field with the
// canonical answer. The local balance changes only after the server
// accepted the debit.
func (m *Machine) ShowAnswer(ctx context.Context) error {
	m.mu.Lock()
	if err := m.requireRunning(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.revealed {
		m.mu.Unlock()
		return ErrAlreadyRevealed
	}
	if m.revealing {
		m.mu.Unlock()
		return ErrRevealPending
	}
	if balance := m.wallet.Identity().Coins; balance < m.revealCost {
		m.mu.Unlock()
		return &InsufficientCoinsError{Balance: balance, Cost: m.revealCost}
	}
	m.revealing = true
	gen, quiz := m.gen, m.quiz
	m.mu.Unlock()

	done := func() {
		m.mu.Lock()
		if gen == m.gen {
			m.revealing = false
		}
		m.mu.Unlock()
	}

	if !m.confirm.Confirm(ctx, fmt.Sprintf("Reveal the answer for %d coins?", m.revealCost)) {
		done()
		return ErrDeclined
	}

	userID := m.wallet.Identity().UserID
	balance, err := m.coins.UpdateCoins(ctx, userID, m.revealCost, domain.CoinSubtract)
	if err != nil {
		done()
		m.log.Error("Failed to debit reveal cost", zap.String("quizID", quiz.ID), zap.Error(err))
		return fmt.Errorf("debit reveal cost: %w", err)
	}

	// The server already debited, so the balance applies even if the
	// quiz was switched meanwhile.
	if err := m.wallet.SetCoins(ctx, balance); err != nil {
		m.log.Warn("Failed to persist coin balance", zap.Error(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale(gen) {
		return ErrStale
	}
	m.revealing = false
	m.revealed = true
	m.answer = quiz.Answer
	return nil
}

// Close stops the timer and discards the active quiz. In-flight requests
// finish but their results are not applied.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveRunning(StateIdle)
	m.gen++
	m.closed = true
	m.quiz = nil
}

// leaveRunning is the single exit from the Running state. It stops the
// timer before moving to next.
func (m *Machine) leaveRunning(next State) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.state = next
}

func (m *Machine) requireRunning() error {
	switch m.state {
	case StateIdle:
		return ErrNoQuiz
	case StateLocked:
		return ErrNotRunning
	case StateCompleted:
		return ErrCompleted
	}
	return nil
}

func (m *Machine) stale(gen uint64) bool {
	return m.closed || gen != m.gen
}
