// Package metrics registriert die Prometheus-Zähler des Dienstes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ArticleViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "article_views_total",
			Help: "Total number of article detail responses served within the pageview limit.",
		},
	)
	PaywallRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paywall_rejections_total",
			Help: "Total number of article requests rejected because the session exceeded its pageview limit.",
		},
	)
	PlaceholderArticles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "placeholder_articles_created_total",
			Help: "Total number of placeholder articles stored after an article lookup miss.",
		},
	)
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result (success, invalid, unknown_user).",
		},
		[]string{"result"},
	)
	SessionsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Total number of expired in-memory sessions removed by the sweeper.",
		},
	)
)

func init() {
	prometheus.MustRegister(ArticleViews, PaywallRejections, PlaceholderArticles, Logins, SessionsSwept)
}
