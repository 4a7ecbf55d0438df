package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-onionping/pkg/types"
)

// Namespace 指标命名空间
const Namespace = "onionping"

// Metrics 连接与探测指标
type Metrics struct {
	// 连接建立
	DialsTotal          *prometheus.CounterVec
	InboundUpgrades     *prometheus.CounterVec
	ConnectionsOpen     prometheus.Gauge
	ListenersOpen       prometheus.Gauge
	InboundThrottled    prometheus.Counter
	ConnectionsAccepted prometheus.Counter

	// 探测
	PingRTT      prometheus.Histogram
	PingFailures *prometheus.CounterVec
}

// New 在 reg 上注册全部指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DialsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dials_total",
			Help:      "Outbound dial attempts by result",
		}, []string{"result"}),
		InboundUpgrades: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inbound_upgrades_total",
			Help:      "Inbound upgrade attempts by result",
		}, []string{"result"}),
		ConnectionsOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connections_open",
			Help:      "Currently established connections",
		}),
		ListenersOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "listeners_open",
			Help:      "Currently active listeners",
		}),
		InboundThrottled: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inbound_throttled_total",
			Help:      "Inbound connections delayed by the upgrade rate limit",
		}),
		ConnectionsAccepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connections_accepted_total",
			Help:      "Raw inbound connections accepted by listeners",
		}),
		PingRTT: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ping_rtt_seconds",
			Help:      "Round trip time of successful pings",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		PingFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ping_failures_total",
			Help:      "Failed pings by error kind",
		}, []string{"kind"}),
	}
}

// result 把错误归类为标签值
func result(err error) string {
	if err == nil {
		return "ok"
	}
	return types.ErrorKind(err)
}

// RecordDial 记录一次出站拨号结果
func (m *Metrics) RecordDial(err error) {
	if m == nil {
		return
	}
	m.DialsTotal.WithLabelValues(result(err)).Inc()
}

// RecordInbound 记录一次入站升级结果
func (m *Metrics) RecordInbound(err error) {
	if m == nil {
		return
	}
	m.InboundUpgrades.WithLabelValues(result(err)).Inc()
}

// RecordAccept 记录监听器接受的原始连接，throttled 表示被限速延后
func (m *Metrics) RecordAccept(throttled bool) {
	if m == nil {
		return
	}
	m.ConnectionsAccepted.Inc()
	if throttled {
		m.InboundThrottled.Inc()
	}
}

// ConnOpened 连接建立
func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Inc()
}

// ConnClosed 连接关闭
func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Dec()
}

// ListenerOpened 监听器启动
func (m *Metrics) ListenerOpened() {
	if m == nil {
		return
	}
	m.ListenersOpen.Inc()
}

// ListenerClosed 监听器关闭
func (m *Metrics) ListenerClosed() {
	if m == nil {
		return
	}
	m.ListenersOpen.Dec()
}

// RecordPing 记录一次探测结果
func (m *Metrics) RecordPing(rtt time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.PingFailures.WithLabelValues(result(err)).Inc()
		return
	}
	m.PingRTT.Observe(rtt.Seconds())
}
