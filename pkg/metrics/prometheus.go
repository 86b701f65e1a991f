package metrics

// Gin middleware exporting request count, latency, and size metrics,
// modeled on github.com/zsais/go-gin-prometheus but reduced to the
// metrics this service actually scrapes.

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricPath = "/metrics"

// HistogramBuckets spans fast handlers through slow outbound-gateway calls.
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 10000, 15000, 30000, 60000,
}

type Logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// RequestCounterURLLabelMappingFn controls the cardinality of the "url"
// label, typically by mapping concrete paths back to their route template.
type RequestCounterURLLabelMappingFn func(c *gin.Context) string

// Prometheus contains the metrics gathered by the instance and its path.
type Prometheus struct {
	reqCnt        *prometheus.CounterVec
	reqDur        *prometheus.HistogramVec
	reqSz, resSz  *prometheus.SummaryVec
	router        *gin.Engine
	listenAddress string

	MetricsPath string

	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn

	logger Logger
}

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsPath             string
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  Logger
}

// NewPrometheus generates a new set of metrics with a certain subsystem name.
func NewPrometheus(options NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		MetricsPath:             defaultMetricPath,
		ReqCntURLLabelMappingFn: options.ReqCntURLLabelMappingFn,
		logger:                  options.Logger,
	}
	if options.MetricsPath != "" {
		p.MetricsPath = options.MetricsPath
	}
	if p.ReqCntURLLabelMappingFn == nil {
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			return c.Request.URL.Path
		}
	}

	p.registerMetrics(options.Subsystem)
	return p
}

// SetListenAddress exposes metrics on a dedicated address instead of the main
// gin engine.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
	if p.listenAddress != "" {
		p.router = gin.New()
	}
}

func (p *Prometheus) registerMetrics(subsystem string) {
	p.reqCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "req_total",
		Help:      "How many HTTP requests processed, partitioned by status code and HTTP method.",
	}, []string{"code", "method", "url"})
	p.reqDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "req_dur_ms",
		Help:      "The HTTP request latencies in milliseconds.",
		Buckets:   HistogramBuckets,
	}, []string{"code", "method", "url"})
	p.reqSz = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Subsystem: subsystem,
		Name:      "req_sz_bytes",
		Help:      "The HTTP request sizes in bytes.",
	}, []string{"code", "method", "url"})
	p.resSz = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Subsystem: subsystem,
		Name:      "resp_sz_bytes",
		Help:      "The HTTP response sizes in bytes.",
	}, []string{"code", "method", "url"})

	for _, col := range []prometheus.Collector{p.reqCnt, p.reqDur, p.reqSz, p.resSz} {
		if err := prometheus.Register(col); err != nil && p.logger != nil {
			p.logger.Errorf("metric could not be registered in Prometheus, err=%v", err)
		}
	}
}

// Use adds the middleware to a gin engine and exposes the metrics endpoint.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.listenAddress != "" {
		p.router.GET(p.MetricsPath, gin.WrapH(promhttp.Handler()))
		go func() { _ = p.router.Run(p.listenAddress) }()
	} else {
		e.GET(p.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
}

// HandlerFunc defines handler function for middleware.
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		reqSz := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := float64(time.Since(start).Milliseconds())
		url := p.ReqCntURLLabelMappingFn(c)

		p.reqDur.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		p.reqCnt.WithLabelValues(status, c.Request.Method, url).Inc()
		p.reqSz.WithLabelValues(status, c.Request.Method, url).Observe(float64(reqSz))
		p.resSz.WithLabelValues(status, c.Request.Method, url).Observe(float64(c.Writer.Size()))
	}
}

func computeApproximateRequestSize(r *http.Request) int {
	s := len(r.URL.Path) + len(r.Method) + len(r.Proto) + len(r.Host)
	for name, values := range r.Header {
		s += len(name)
		for _, v := range values {
			s += len(v)
		}
	}
	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}
	return s
}
