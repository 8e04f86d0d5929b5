package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techblog_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techblog_registrations_total",
		Help: "Number of registration attempts grouped by status.",
	}, []string{"status"})

	imageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techblog_image_uploads_total",
		Help: "Number of image host uploads grouped by status.",
	}, []string{"status"})

	notificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techblog_notifications_created_total",
		Help: "Notifications fanned out, grouped by type.",
	}, []string{"type"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techblog_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})
)

// IncLogin increments the login counter.
func IncLogin(status string) { loginAttempts.WithLabelValues(status).Inc() }

// IncRegister increments the registration counter.
func IncRegister(status string) { registrations.WithLabelValues(status).Inc() }

// IncUpload increments the image upload counter.
func IncUpload(status string) { imageUploads.WithLabelValues(status).Inc() }

// IncNotification increments the fan-out counter for one notification type.
func IncNotification(ntype string) { notificationsCreated.WithLabelValues(ntype).Inc() }

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) { rateLimitHits.WithLabelValues(name).Inc() }
