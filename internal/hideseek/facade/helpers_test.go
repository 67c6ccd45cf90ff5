package facade

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/lua"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/catalog"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/service"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

var (
	creator   = model.Identity{UserID: "creator", Username: "Creator"}
	seeker    = model.Identity{UserID: "seeker", Username: "Seeker"}
	moderator = model.Identity{UserID: "mod", Username: "Mod", IsModerator: true}

	pumpkinSpot = model.HidingSpot{ObjectKey: "pumpkin", RelX: 0.50, RelY: 0.30}
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(time.Millisecond)
	return t
}

type testEnv struct {
	mr     *miniredis.Miniredis
	facade *Facade
}

type envOptions struct {
	policy   GuessPolicy
	cooldown time.Duration
}

func newTestEnv(t *testing.T, opts envOptions) testEnv {
	t.Helper()
	adapter, mr := testhelper.NewTestAdapter(t)
	cat, err := catalog.Load()
	require.NoError(t, err)
	v := validation.New(cat)
	logger := testhelper.DiscardLogger()
	clock := &testClock{now: time.UnixMilli(1_700_000_000_000)}

	sessions := redis.NewSessionStore(adapter, v, logger)
	players := service.NewPlayerService(redis.NewPlayerStore(adapter, v, logger), clock.Now, logger)
	ledger := service.NewGuessLedger(redis.NewGuessStore(adapter, v, logger), service.GuessLedgerConfig{Clock: clock.Now}, logger)

	deps := Dependencies{
		Sessions:  sessions,
		Ledger:    ledger,
		Players:   players,
		Validator: v,
		Strategies: []ReadStrategy{
			NewCanonicalStrategy(sessions, players),
			NewLegacyStrategy(redis.NewLegacyReader(adapter, v, logger)),
		},
	}
	if opts.cooldown > 0 {
		registry := lua.NewRegistry([]lua.Script{redis.GuessCooldownScript})
		deps.Limiter = redis.NewGuessCooldown(adapter, registry, opts.cooldown)
	}

	f := New(deps, Config{Policy: opts.policy, OperationTimeout: 5 * time.Second}, logger)
	return testEnv{mr: mr, facade: f}
}
