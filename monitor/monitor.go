// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	MessagesReceived *prometheus.CounterVec
	MessageLatency   prometheus.Histogram
	ActionErrors     *prometheus.CounterVec
	DiceRolls        *prometheus.CounterVec
	Captures         prometheus.Counter
	GamesFinished    prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected players",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received",
		}, []string{"type"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		ActionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_errors_total",
			Help:      "Rejected player actions by reason",
		}, []string{"reason"}),
		DiceRolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dice_rolls_total",
			Help:      "Dice rolls by face",
		}, []string{"face"}),
		Captures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Pieces sent back to base",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached a winner",
		}),
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.MessagesReceived,
		m.MessageLatency,
		m.ActionErrors,
		m.DiceRolls,
		m.Captures,
		m.GamesFinished,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	registry     *prometheus.Registry
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

var publishOnce sync.Once

// NewMonitor registers metrics on a private registry so several monitors can
// coexist in one process.
func NewMonitor(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		registry:  reg,
		startTime: time.Now(),
	}
}

// Handler serves the Prometheus exposition and expvar endpoints.
func (m *Monitor) Handler() http.Handler {
	// expvar names are process global
	publishOnce.Do(func() {
		expvar.Publish("uptime", expvar.Func(func() interface{} {
			return time.Since(m.startTime).Seconds()
		}))
		expvar.Publish("requests", expvar.Func(func() interface{} {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			return m.requestCount
		}))
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

func (m *Monitor) StartServer(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: m.Handler()}
	go srv.ListenAndServe()
	return srv
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) SetOnlinePlayers(count int) {
	m.metrics.OnlinePlayers.Set(float64(count))
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncMessagesReceived(msgType string) {
	m.metrics.MessagesReceived.WithLabelValues(msgType).Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

func (m *Monitor) IncActionErrors(reason string) {
	m.metrics.ActionErrors.WithLabelValues(reason).Inc()
}

func (m *Monitor) ObserveDiceRoll(face int) {
	m.metrics.DiceRolls.WithLabelValues(strconv.Itoa(face)).Inc()
}

func (m *Monitor) AddCaptures(n int) {
	m.metrics.Captures.Add(float64(n))
}

func (m *Monitor) IncGamesFinished() {
	m.metrics.GamesFinished.Inc()
}
