package i18n

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeData struct {
	mu      sync.Mutex
	byLang  map[string][]models.Translation
	Err     error
	Delay   time.Duration
	calls   atomic.Int32
	LastTbl string
	LastEq  []backend.Eq
}

func (f *fakeData) Select(ctx context.Context, table, columns string, filters []backend.Eq, dest any) error {
	f.calls.Add(1)
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastTbl = table
	f.LastEq = filters
	if f.Err != nil {
		return f.Err
	}
	lang := ""
	for _, e := range filters {
		if e.Column == "lang_code" {
			lang = e.Value
		}
	}
	*(dest.(*[]models.Translation)) = append([]models.Translation(nil), f.byLang[lang]...)
	return nil
}

func (f *fakeData) SelectOne(context.Context, string, string, []backend.Eq, any) error { return nil }
func (f *fakeData) Upsert(context.Context, string, any) error                          { return nil }
func (f *fakeData) RPC(context.Context, string, any, any) error                        { return nil }

func (f *fakeData) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

func (f *fakeData) setLang(lang string, rows ...models.Translation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byLang[lang] = rows
}

func newFake() *fakeData {
	return &fakeData{byLang: map[string][]models.Translation{
		"zh-TW": {{Key: "a", Value: "甲", LangCode: "zh-TW"}},
		"en":    {{Key: "a", Value: "A", LangCode: "en"}},
	}}
}

func TestGet_BeforeInitializeReturnsKey(t *testing.T) {
	c := New(newFake(), "", logging.NewDiscard())
	assert.Equal(t, "k", c.Get("k"))
	assert.False(t, c.Loaded())
	assert.Equal(t, "", c.Lang())
}

func TestInitialize_DefaultLanguage(t *testing.T) {
	f := newFake()
	c := New(f, "", logging.NewDiscard())

	require.NoError(t, c.Initialize(context.Background(), ""))

	assert.Equal(t, "translation", f.LastTbl)
	assert.Equal(t, []backend.Eq{{Column: "lang_code", Value: "zh-TW"}}, f.LastEq)
	assert.Equal(t, "甲", c.Get("a"))
	assert.Equal(t, "missing", c.Get("missing"))
	assert.Equal(t, "zh-TW", c.Lang())
	assert.True(t, c.Loaded())
}

func TestInitialize_SecondCallIsNoop(t *testing.T) {
	f := newFake()
	c := New(f, "zh-TW", logging.NewDiscard())

	require.NoError(t, c.Initialize(context.Background(), "zh-TW"))
	require.NoError(t, c.Initialize(context.Background(), "zh-TW"))

	assert.Equal(t, int32(1), f.calls.Load())
}

func TestInitialize_ConcurrentCallsShareOneFetch(t *testing.T) {
	f := newFake()
	f.Delay = 50 * time.Millisecond
	c := New(f, "zh-TW", logging.NewDiscard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Initialize(context.Background(), "zh-TW"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "甲", c.Get("a"))
}

func TestInitialize_SwitchLanguage(t *testing.T) {
	f := newFake()
	c := New(f, "zh-TW", logging.NewDiscard())
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, "zh-TW"))
	require.NoError(t, c.Initialize(ctx, "en"))

	assert.Equal(t, "A", c.Get("a"))
	assert.Equal(t, "en", c.Lang())
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestInitialize_FailureLeavesCacheUnloaded(t *testing.T) {
	f := newFake()
	f.Err = errors.New("offline")
	c := New(f, "zh-TW", logging.NewDiscard())

	err := c.Initialize(context.Background(), "")
	require.Error(t, err)
	assert.False(t, c.Loaded())
	assert.Equal(t, "a", c.Get("a"))

	f.setErr(nil)
	require.NoError(t, c.Initialize(context.Background(), ""))
	assert.Equal(t, "甲", c.Get("a"))
}

func TestReload_SwapsInNewValues(t *testing.T) {
	f := newFake()
	c := New(f, "zh-TW", logging.NewDiscard())
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx, ""))

	f.setLang("zh-TW", models.Translation{Key: "a", Value: "乙"}, models.Translation{Key: "b", Value: "丙"})
	require.NoError(t, c.Reload(ctx))

	assert.Equal(t, "乙", c.Get("a"))
	assert.Equal(t, "丙", c.Get("b"))
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestReload_FailureKeepsOldValues(t *testing.T) {
	f := newFake()
	c := New(f, "zh-TW", logging.NewDiscard())
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx, ""))

	f.setErr(errors.New("offline"))
	require.Error(t, c.Reload(ctx))

	assert.Equal(t, "甲", c.Get("a"))
	assert.True(t, c.Loaded())
}

func TestReload_OldValuesVisibleWhileFetching(t *testing.T) {
	f := newFake()
	c := New(f, "zh-TW", logging.NewDiscard())
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx, ""))

	f.Delay = 100 * time.Millisecond
	f.setLang("zh-TW", models.Translation{Key: "a", Value: "乙"})

	done := make(chan error, 1)
	go func() { done <- c.Reload(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "甲", c.Get("a"))

	require.NoError(t, <-done)
	assert.Equal(t, "乙", c.Get("a"))
}

func TestGet_EmptyValueFallsBackToKey(t *testing.T) {
	f := newFake()
	f.setLang("zh-TW", models.Translation{Key: "blank", Value: ""})
	c := New(f, "zh-TW", logging.NewDiscard())
	require.NoError(t, c.Initialize(context.Background(), ""))

	assert.Equal(t, "blank", c.Get("blank"))
}
