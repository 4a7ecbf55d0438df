package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/pkg/types"
)

func TestRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordDial(nil)
	m.RecordDial(types.ErrUnroutableAddress)
	m.RecordDial(types.ErrUnroutableAddress)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialsTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DialsTotal.WithLabelValues("unroutable")))

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsOpen))

	m.RecordAccept(true)
	m.RecordAccept(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConnectionsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InboundThrottled))

	m.RecordPing(10*time.Millisecond, nil)
	m.RecordPing(0, errors.New("boom"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PingRTT))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PingFailures.WithLabelValues("other")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDial(nil)
		m.RecordInbound(nil)
		m.RecordAccept(true)
		m.ConnOpened()
		m.ConnClosed()
		m.ListenerOpened()
		m.ListenerClosed()
		m.RecordPing(time.Second, nil)
	})
}

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordDial(nil)

	srv := NewServer("127.0.0.1:0", reg)
	assert.Empty(t, srv.Addr())
	require.NoError(t, srv.Start())
	defer srv.Stop(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `onionping_dials_total{result="ok"} 1`)

	resp, err = http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestModule(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		var m *Metrics
		app := fxtest.New(t, Module(), fx.Populate(&m))
		app.RequireStart()
		assert.NotNil(t, m)
		app.RequireStop()
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Metrics.Enable = false
		var m *Metrics
		app := fxtest.New(t, fx.Supply(cfg), Module(), fx.Populate(&m))
		app.RequireStart()
		assert.Nil(t, m)
		app.RequireStop()
	})
}
