package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	CourseEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_events_total",
			Help: "Course authoring events by kind",
		},
		[]string{"event"},
	)

	UploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_bytes_total",
			Help: "Bytes accepted by media uploads",
		},
		[]string{"kind"},
	)

	EventSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "course_event_subscribers",
			Help: "Open course event websocket sessions",
		},
	)

	EventsPushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "course_events_pushed_total",
			Help: "Course events written to subscriber buffers",
		},
	)
)

const (
	EventCourseCreated   = "course_created"
	EventCourseUpdated   = "course_updated"
	EventCoursePublished = "course_published"
	EventCourseDeleted   = "course_deleted"
	EventChapterAdded    = "chapter_added"
	EventLessonAdded     = "lesson_added"
	EventEnrollment      = "enrollment"
	EventCoverUploaded   = "cover_uploaded"
	EventVideoUploaded   = "video_uploaded"
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(CourseEvents)
	prometheus.MustRegister(UploadBytes)
	prometheus.MustRegister(EventSubscribers)
	prometheus.MustRegister(EventsPushed)
}

// RecordCourseEvent counts one authoring or enrollment event.
func RecordCourseEvent(event string) {
	CourseEvents.WithLabelValues(event).Inc()
}

func RecordUpload(kind string, size int64) {
	UploadBytes.WithLabelValues(kind).Add(float64(size))
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
