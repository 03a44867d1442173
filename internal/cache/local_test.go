package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/finsight/chartpipe/model"
)

func artifact(symbol string) *model.Artifact {
	return &model.Artifact{
		Symbol:      symbol,
		Kind:        model.KindPrice,
		ContentType: "image/svg+xml",
		Data:        []byte("<svg>" + symbol + "</svg>"),
		GeneratedAt: time.Now(),
	}
}

func TestLocalRoundTrip(t *testing.T) {
	l := NewLocal(10, clock.NewMock())

	l.Put("k1", artifact("AAPL"), time.Hour)
	got, ok := l.Get("k1")
	require.True(t, ok)
	require.Equal(t, "AAPL", got.Symbol)

	_, ok = l.Get("absent")
	require.False(t, ok)
}

func TestLocalReturnsCopies(t *testing.T) {
	l := NewLocal(10, clock.NewMock())
	src := artifact("AAPL")
	l.Put("k1", src, time.Hour)

	src.Data[0] = 'X' // caller mutating its own artifact after Put

	first, ok := l.Get("k1")
	require.True(t, ok)
	first.Data[0] = 'Y' // caller mutating what Get returned

	second, ok := l.Get("k1")
	require.True(t, ok)
	require.Equal(t, "<svg>AAPL</svg>", string(second.Data))
}

func TestLocalTTLExpiry(t *testing.T) {
	mock := clock.NewMock()
	l := NewLocal(10, mock)

	l.Put("k1", artifact("AAPL"), time.Minute)
	_, ok := l.Get("k1")
	require.True(t, ok)

	mock.Add(2 * time.Minute)
	_, ok = l.Get("k1")
	require.False(t, ok)
	require.Equal(t, 0, l.Len(), "expired entry is evicted on lookup")
}

func TestLocalLRUEviction(t *testing.T) {
	l := NewLocal(2, clock.NewMock())

	l.Put("k1", artifact("AAPL"), time.Hour)
	l.Put("k2", artifact("MSFT"), time.Hour)

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := l.Get("k1")
	require.True(t, ok)

	l.Put("k3", artifact("GOOG"), time.Hour)
	require.Equal(t, 2, l.Len())

	_, ok = l.Get("k2")
	require.False(t, ok, "least recently used entry is gone")
	_, ok = l.Get("k1")
	require.True(t, ok)
	_, ok = l.Get("k3")
	require.True(t, ok)
}

func TestLocalPutExistingRefreshes(t *testing.T) {
	mock := clock.NewMock()
	l := NewLocal(10, mock)

	l.Put("k1", artifact("AAPL"), time.Minute)
	mock.Add(50 * time.Second)
	l.Put("k1", artifact("AAPL"), time.Minute)
	mock.Add(30 * time.Second)

	_, ok := l.Get("k1")
	require.True(t, ok, "refreshed entry outlives the original TTL")
	require.Equal(t, 1, l.Len())
}

func TestLocalDel(t *testing.T) {
	l := NewLocal(10, clock.NewMock())
	l.Put("k1", artifact("AAPL"), time.Hour)

	require.True(t, l.Del("k1"))
	require.False(t, l.Del("k1"))
	require.Equal(t, 0, l.Len())
}

func TestLocalBoundHoldsUnderChurn(t *testing.T) {
	l := NewLocal(5, clock.NewMock())
	for i := 0; i < 100; i++ {
		l.Put(fmt.Sprintf("k%d", i), artifact("AAPL"), time.Hour)
	}
	require.Equal(t, 5, l.Len())
}
