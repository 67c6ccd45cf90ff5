package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/catalog"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

type testEnv struct {
	adapter   *valkeyx.Adapter
	mr        *miniredis.Miniredis
	validator *validation.Validator
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	adapter, mr := testhelper.NewTestAdapter(t)
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog load failed: %v", err)
	}
	return testEnv{adapter: adapter, mr: mr, validator: validation.New(cat)}
}
