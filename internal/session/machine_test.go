package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProgress struct {
	mock.Mock
}

func (m *mockProgress) RecordAnswer(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error) {
	args := m.Called(ctx, userID, quizID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AnswerAck), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) UpdateCoins(ctx context.Context, userID string, amount int, op domain.CoinOperation) (int, error) {
	args := m.Called(ctx, userID, amount, op)
	return args.Int(0), args.Error(1)
}

type fakeTimer struct {
	tick    func()
	stopped bool
}

func (t *fakeTimer) Stop() { t.stopped = true }

// fakeClock hands out timers that only tick when advanced.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) factory(_ time.Duration, tick func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{tick: tick}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (c *fakeClock) advance(seconds int) {
	c.mu.Lock()
	var live []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.mu.Unlock()
	for i := 0; i < seconds; i++ {
		for _, t := range live {
			t.tick()
		}
	}
}

type fixture struct {
	machine  *Machine
	progress *mockProgress
	ledger   *mockLedger
	wallet   *identity.Store
	clock    *fakeClock
}

func newFixture(t *testing.T, coins int, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		progress: new(mockProgress),
		ledger:   new(mockLedger),
		wallet:   identity.NewStore(nil),
		clock:    &fakeClock{},
	}
	require.NoError(t, f.wallet.Save(context.Background(), identity.Identity{
		AuthToken: "tok", UserID: "u1", Username: "alice", Coins: coins,
	}))
	opts = append([]Option{WithTimerFactory(f.clock.factory)}, opts...)
	f.machine = NewMachine(f.progress, f.ledger, f.wallet, opts...)
	return f
}

func quiz42() *domain.Quiz {
	return &domain.Quiz{ID: "q42", Title: "Answer", Answer: "42", Category: "Binary Operations"}
}

func TestMachine_CorrectAnswer(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())
	f.clock.advance(5)

	f.progress.On("RecordAnswer", mock.Anything, "u1", "q42", dto.AnswerRequest{
		QuestionID: "q42", UserAnswer: "42", IsCorrect: true, TimeSpent: 5, Completed: true,
	}).Return(&dto.AnswerAck{Success: true, IsCorrect: true, Completed: true, Credited: 100, Coins: 150}, nil).Once()

	res, err := f.machine.SubmitAnswer(ctx, "42")
	require.NoError(t, err)

	assert.True(t, res.Correct)
	assert.Equal(t, 100, res.Credited)
	assert.Equal(t, 5, res.Elapsed)
	assert.Equal(t, 150, f.wallet.Identity().Coins)
	assert.True(t, f.wallet.Identity().HasCompleted("q42"))

	snap := f.machine.Snapshot()
	assert.True(t, snap.Completed())
	assert.Zero(t, f.clock.active(), "timer must stop on completion")

	_, err = f.machine.SubmitAnswer(ctx, "42")
	assert.ErrorIs(t, err, ErrCompleted)
	assert.ErrorIs(t, f.machine.ShowAnswer(ctx), ErrCompleted)

	f.progress.AssertExpectations(t)
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_AnswerNormalization(t *testing.T) {
	for _, input := range []string{" Bubble ", "bubble", "BUBBLE"} {
		t.Run(input, func(t *testing.T) {
			f := newFixture(t, 0)
			f.machine.SelectQuiz(&domain.Quiz{ID: "qb", Answer: "bubble"})
			require.NoError(t, f.machine.Start())

			f.progress.On("RecordAnswer", mock.Anything, "u1", "qb", mock.MatchedBy(func(req dto.AnswerRequest) bool {
				return req.IsCorrect && req.Completed
			})).Return(&dto.AnswerAck{Success: true}, nil)

			res, err := f.machine.SubmitAnswer(context.Background(), input)
			require.NoError(t, err)
			assert.True(t, res.Correct)
		})
	}
}

func TestMachine_WrongAnswer(t *testing.T) {
	f := newFixture(t, 50)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())
	f.machine.SetAnswer("7")
	f.clock.advance(3)

	f.progress.On("RecordAnswer", mock.Anything, "u1", "q42", dto.AnswerRequest{
		QuestionID: "q42", UserAnswer: "7", IsCorrect: false, TimeSpent: 3, Completed: false,
	}).Return(&dto.AnswerAck{Success: true}, nil).Once()

	res, err := f.machine.SubmitAnswer(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, res.Correct)

	snap := f.machine.Snapshot()
	assert.True(t, snap.Running())
	assert.Empty(t, snap.Answer, "input is cleared")
	assert.Equal(t, 1, f.clock.active(), "timer keeps running")
	assert.Equal(t, 50, f.wallet.Identity().Coins)

	f.clock.advance(2)
	assert.Equal(t, 5, f.machine.Snapshot().Elapsed)

	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.progress.AssertExpectations(t)
}

func TestMachine_AlreadyCompletedIsNotCredited(t *testing.T) {
	f := newFixture(t, 50)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	f.progress.On("RecordAnswer", mock.Anything, "u1", "q42", mock.Anything).
		Return(&dto.AnswerAck{Success: true, IsCorrect: true, Completed: true, AlreadyCompleted: true}, nil)

	res, err := f.machine.SubmitAnswer(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Zero(t, res.Credited)
	assert.True(t, f.machine.Snapshot().Completed())
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_UnpaidCompletionKeepsBalance(t *testing.T) {
	f := newFixture(t, 50)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	// The server completed the quiz but had already paid for it.
	f.progress.On("RecordAnswer", mock.Anything, "u1", "q42", mock.Anything).
		Return(&dto.AnswerAck{Success: true, IsCorrect: true, Completed: true}, nil)

	res, err := f.machine.SubmitAnswer(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Zero(t, res.Credited)
	assert.True(t, f.machine.Snapshot().Completed())
	assert.Equal(t, 50, f.wallet.Identity().Coins)
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_RecordFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, 50)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())
	f.machine.SetAnswer("42")

	f.progress.On("RecordAnswer", mock.Anything, "u1", "q42", mock.Anything).Return(nil, errors.New("unreachable"))

	_, err := f.machine.SubmitAnswer(context.Background(), "42")
	assert.Error(t, err)

	snap := f.machine.Snapshot()
	assert.True(t, snap.Running())
	assert.Equal(t, "42", snap.Answer)
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_RevealInsufficientCoins(t *testing.T) {
	f := newFixture(t, 250)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	err := f.machine.ShowAnswer(context.Background())

	var insufficient *InsufficientCoinsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 250, insufficient.Balance)
	assert.Equal(t, 50, insufficient.Shortfall())
	assert.Equal(t, 250, f.wallet.Identity().Coins)
	assert.False(t, f.machine.Snapshot().Revealed)
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_Reveal(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	f.ledger.On("UpdateCoins", mock.Anything, "u1", 300, domain.CoinSubtract).Return(200, nil).Once()

	require.NoError(t, f.machine.ShowAnswer(ctx))

	snap := f.machine.Snapshot()
	assert.Equal(t, 200, f.wallet.Identity().Coins)
	assert.Equal(t, "42", snap.Answer)
	assert.True(t, snap.Revealed)
	assert.True(t, snap.Running())

	assert.ErrorIs(t, f.machine.ShowAnswer(ctx), ErrAlreadyRevealed)
	f.ledger.AssertExpectations(t)
}

func TestMachine_RevealDebitFailureDoesNotTouchBalance(t *testing.T) {
	f := newFixture(t, 500)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	f.ledger.On("UpdateCoins", mock.Anything, "u1", 300, domain.CoinSubtract).
		Return(0, domain.NewInsufficientCoinsError(120, 300)).Once()

	err := f.machine.ShowAnswer(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientCoins))
	assert.Equal(t, 500, f.wallet.Identity().Coins)
	assert.False(t, f.machine.Snapshot().Revealed)

	// the pending flag is released so the learner may try again
	f.ledger.On("UpdateCoins", mock.Anything, "u1", 300, domain.CoinSubtract).Return(200, nil).Once()
	assert.NoError(t, f.machine.ShowAnswer(context.Background()))
}

func TestMachine_DeclinedConfirmationChangesNothing(t *testing.T) {
	decline := ConfirmFunc(func(context.Context, string) bool { return false })
	f := newFixture(t, 500, WithConfirmer(decline))
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())
	f.machine.SetAnswer("41")

	_, err := f.machine.SubmitAnswer(context.Background(), "41")
	assert.ErrorIs(t, err, ErrDeclined)
	assert.ErrorIs(t, f.machine.ShowAnswer(context.Background()), ErrDeclined)

	snap := f.machine.Snapshot()
	assert.Equal(t, "41", snap.Answer)
	assert.False(t, snap.Revealed)
	assert.True(t, snap.Running())
	assert.Equal(t, 500, f.wallet.Identity().Coins)
	f.progress.AssertNotCalled(t, "RecordAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_SwitchingQuizLeavesOneTimer(t *testing.T) {
	f := newFixture(t, 0)
	a := quiz42()
	b := &domain.Quiz{ID: "qb", Answer: "bubble"}

	f.machine.SelectQuiz(a)
	require.NoError(t, f.machine.Start())
	f.clock.advance(4)
	staleTick := f.clock.timers[0].tick

	f.machine.SelectQuiz(b)
	assert.Zero(t, f.clock.active())
	snap := f.machine.Snapshot()
	assert.True(t, snap.Locked())
	assert.Zero(t, snap.Elapsed)

	require.NoError(t, f.machine.Start())
	assert.Equal(t, 1, f.clock.active())

	staleTick()
	assert.Zero(t, f.machine.Snapshot().Elapsed, "ticks from the previous quiz are ignored")

	f.clock.advance(2)
	assert.Equal(t, 2, f.machine.Snapshot().Elapsed)
}

func TestMachine_StartRules(t *testing.T) {
	f := newFixture(t, 0)
	assert.ErrorIs(t, f.machine.Start(), ErrNoQuiz)

	f.machine.SelectQuiz(quiz42())
	_, err := f.machine.SubmitAnswer(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, f.machine.ShowAnswer(context.Background()), ErrNotRunning)

	require.NoError(t, f.machine.Start())
	assert.ErrorIs(t, f.machine.Start(), ErrNotLocked)
	assert.Equal(t, 1, f.clock.active())
}

func TestMachine_RevealDroppedAfterQuizSwitch(t *testing.T) {
	f := newFixture(t, 500)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	next := &domain.Quiz{ID: "qb", Answer: "bubble"}
	f.ledger.On("UpdateCoins", mock.Anything, "u1", 300, domain.CoinSubtract).
		Run(func(mock.Arguments) { f.machine.SelectQuiz(next) }).
		Return(200, nil)

	err := f.machine.ShowAnswer(context.Background())
	assert.ErrorIs(t, err, ErrStale)

	snap := f.machine.Snapshot()
	assert.Equal(t, "qb", snap.Quiz.ID)
	assert.Empty(t, snap.Answer)
	assert.False(t, snap.Revealed)
	assert.Equal(t, 200, f.wallet.Identity().Coins, "the server-side debit is still reflected")
}

func TestMachine_CloseStopsTimerAndDropsResults(t *testing.T) {
	f := newFixture(t, 50)
	f.machine.SelectQuiz(quiz42())
	require.NoError(t, f.machine.Start())

	f.progress.On("RecordAnswer", mock.Anything, "u1", "q42", mock.Anything).
		Run(func(mock.Arguments) { f.machine.Close() }).
		Return(&dto.AnswerAck{Success: true}, nil)

	_, err := f.machine.SubmitAnswer(context.Background(), "42")
	assert.ErrorIs(t, err, ErrStale)
	assert.Zero(t, f.clock.active())
	assert.Equal(t, StateIdle, f.machine.Snapshot().State)
	assert.Equal(t, 50, f.wallet.Identity().Coins)
	f.ledger.AssertNotCalled(t, "UpdateCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTickerFactory(t *testing.T) {
	var mu sync.Mutex
	ticks := 0
	timer := TickerFactory(5*time.Millisecond, func() {
		mu.Lock()
		ticks++
		mu.Unlock()
	})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks >= 2
	}, time.Second, 5*time.Millisecond)

	timer.Stop()
	timer.Stop()
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "State(9)", State(9).String())
}
