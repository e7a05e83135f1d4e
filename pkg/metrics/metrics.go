package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	calculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tco_calculations_total",
		Help: "tco_calculations_total Total number of cost estimations per target and outcome",
	}, []string{"target", "outcome"})

	syncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tco_price_sync_runs_total",
		Help: "tco_price_sync_runs_total Total number of price refresher runs",
	}, []string{"provider", "source", "status"})

	skusPriced = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tco_price_sync_skus_priced",
		Help: "tco_price_sync_skus_priced Number of SKUs priced by the last refresher run",
	}, []string{"provider"})

	lastSyncTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tco_price_sync_last_success_timestamp_seconds",
		Help: "tco_price_sync_last_success_timestamp_seconds Unix time of the last successful refresher run",
	}, []string{"provider"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tco_http_request_duration_seconds",
		Help:    "tco_http_request_duration_seconds Response time in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.3, 0.6, 1, 3, 6, 30, 120},
	}, []string{"route", "method", "code"})
)

// Init registers the collectors with the default registry. Collectors record
// values before registration too, so packages can observe without calling it.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(calculationsTotal, syncRunsTotal, skusPriced, lastSyncTimestamp, requestDuration)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveCalculation(target string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	calculationsTotal.WithLabelValues(target, outcome).Inc()
}

func ObserveSyncRun(run domain.SyncRun) {
	syncRunsTotal.WithLabelValues(run.Provider, run.Source, string(run.Status)).Inc()
	if run.Status != domain.SyncStatusFinished {
		return
	}

	skusPriced.WithLabelValues(run.Provider).Set(float64(run.SKUsPriced))
	if run.FinishedAt != nil {
		lastSyncTimestamp.WithLabelValues(run.Provider).Set(float64(run.FinishedAt.Unix()))
	}
}

func ObserveRequest(route, method string, code int, elapsed time.Duration) {
	requestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
