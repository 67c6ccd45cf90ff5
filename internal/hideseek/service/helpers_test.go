package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/catalog"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

// fakeClock: 호출마다 1ms 씩 증가하는 테스트 시계
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(time.Millisecond)
	return t
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

type fixture struct {
	mr      *miniredis.Miniredis
	ledger  *GuessLedger
	players *PlayerService
	clock   *fakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	adapter, mr := testhelper.NewTestAdapter(t)
	cat, err := catalog.Load()
	require.NoError(t, err)
	v := validation.New(cat)
	logger := testhelper.DiscardLogger()
	clock := newFakeClock()

	return fixture{
		mr:      mr,
		ledger:  NewGuessLedger(redis.NewGuessStore(adapter, v, logger), GuessLedgerConfig{Clock: clock.Now}, logger),
		players: NewPlayerService(redis.NewPlayerStore(adapter, v, logger), clock.Now, logger),
		clock:   clock,
	}
}

var octmapPumpkin = model.HidingSpot{ObjectKey: "pumpkin", RelX: 0.50, RelY: 0.30}

func guessParams(userID, objectKey string, x, y float64) RecordGuessParams {
	return RecordGuessParams{
		GameID:    "g1",
		UserID:    userID,
		Username:  userID,
		ObjectKey: objectKey,
		RelX:      x,
		RelY:      y,
		TrueSpot:  octmapPumpkin,
	}
}
