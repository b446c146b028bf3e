package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "events_total", Help: "Market events admitted to the dispatcher"},
		[]string{"type"},
	)
	InvalidEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "invalid_events_total", Help: "Events rejected by validation"},
		[]string{"type"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals emitted per detector"},
		[]string{"detector", "signal"},
	)
	FeedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feed_events_total", Help: "Events produced by the market data feed"},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal, InvalidEventsTotal, SignalsTotal, FeedEventsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
