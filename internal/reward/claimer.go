package reward

import (
	"context"
	"errors"
	"sync"
	"time"

	"welearn/internal/dto"
	"welearn/internal/identity"

	"go.uber.org/zap"
)

// ErrNotClaimable is returned when today was already claimed or a claim
// is in flight. No request is sent.
var ErrNotClaimable = errors.New("today's reward is not claimable")

// ClaimAPI records a claim on the server.
type ClaimAPI interface {
	ClaimReward(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error)
}

// Wallet is the slice of the identity store the claimer writes to.
type Wallet interface {
	Identity() identity.Identity
	SetCoins(ctx context.Context, coins int) error
}

// Claimer coordinates daily claims for one session.
type Claimer struct {
	mu      sync.Mutex
	api     ClaimAPI
	wallet  Wallet
	claimed DateSet
	locked  bool
	now     func() time.Time
	log     *zap.Logger
}

// ClaimerOption configures a Claimer.
type ClaimerOption func(*Claimer)

func WithClock(now func() time.Time) ClaimerOption {
	return func(c *Claimer) { c.now = now }
}

func WithLogger(log *zap.Logger) ClaimerOption {
	return func(c *Claimer) { c.log = log }
}

// NewClaimer creates a claimer seeded with the dates already claimed.
func NewClaimer(api ClaimAPI, wallet Wallet, claimed DateSet, opts ...ClaimerOption) *Claimer {
	if claimed == nil {
		claimed = NewDateSet()
	}
	c := &Claimer{
		api:     api,
		wallet:  wallet,
		claimed: claimed,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanClaim reports whether a claim for today would be attempted.
func (c *Claimer) CanClaim() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	today := c.now()
	return !c.locked && IsClaimable(today, today, c.claimed)
}

// Claimed returns a copy of the claimed dates.
func (c *Claimer) Claimed() DateSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(DateSet, len(c.claimed))
	for k := range c.claimed {
		out[k] = struct{}{}
	}
	return out
}

// Claim claims today's reward. The claimer locks itself before the request
// and stays locked if the server rejects it.
func (c *Claimer) Claim(ctx context.Context) (*dto.ClaimResponse, error) {
	c.mu.Lock()
	today := c.now()
	if c.locked || !IsClaimable(today, today, c.claimed) {
		c.mu.Unlock()
		return nil, ErrNotClaimable
	}
	c.locked = true
	c.mu.Unlock()

	id := c.wallet.Identity()
	req := dto.ClaimRequest{ClaimDate: DateKey(today), RewardAmount: RewardForDate(today)}
	resp, err := c.api.ClaimReward(ctx, id.UserID, req)
	if err != nil {
		c.log.Warn("Reward claim rejected", zap.String("userID", id.UserID), zap.String("date", req.ClaimDate), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.claimed.Add(today)
	c.locked = false
	c.mu.Unlock()

	if err := c.wallet.SetCoins(ctx, resp.NewCoins); err != nil {
		c.log.Error("Failed to persist coin balance after claim", zap.Error(err))
		return resp, err
	}
	c.log.Info("Reward claimed", zap.String("userID", id.UserID), zap.String("date", req.ClaimDate), zap.Int("newCoins", resp.NewCoins))
	return resp, nil
}
