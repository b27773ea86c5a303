package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotel-survey/backend/config"
)

// Metrics Prometheus 指标集合
// nil *Metrics 上的所有记录方法均为空操作，便于测试与关闭指标时直接传 nil
type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	submissions   *prometheus.CounterVec
	ambiguities   *prometheus.CounterVec
	storeReadFail *prometheus.CounterVec
}

// New 创建独立 registry 并注册全部指标
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "http_requests_total",
		}, []string{"method", "route", "status"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets,
		}, []string{"method", "route", "status"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "survey_submissions_total",
			Help: "Survey submissions by outcome (created, resubmitted, partial, rejected, failed).",
		}, []string{"outcome"}),
		ambiguities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "completion_ambiguities_total",
			Help: "Assignments whose stored flag disagreed with survey existence.",
		}, []string{"kind"}),
		storeReadFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "store_read_degraded_total",
			Help: "Collection reads that degraded to an empty collection.",
		}, []string{"collection"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.submissions, m.ambiguities, m.storeReadFail)
	return m
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 供测试读取
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware 记录 HTTP 请求计数与耗时，route 取 gin 路由模板以避免高基数
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// SubmissionOutcome 记录一次提交结果
func (m *Metrics) SubmissionOutcome(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// Ambiguity 记录一次完成状态分歧
func (m *Metrics) Ambiguity(kind string) {
	if m == nil {
		return
	}
	m.ambiguities.WithLabelValues(kind).Inc()
}

// StoreReadDegraded 记录一次读取降级
func (m *Metrics) StoreReadDegraded(collection string) {
	if m == nil {
		return
	}
	m.storeReadFail.WithLabelValues(collection).Inc()
}
