//nolint:gochecknoglobals
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InvitesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invitebot",
		Name:      "invites_issued_total",
		Help:      "Invite issuance attempts by outcome",
	}, []string{"result"})

	InviteCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "invitebot",
		Name:      "invite_code_collisions_total",
		Help:      "Generated invite codes rejected by the uniqueness constraint",
	})

	OrphanedLinks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "invitebot",
		Name:      "orphaned_links_total",
		Help:      "Minted links that could be neither persisted nor revoked",
	})

	AdminEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invitebot",
		Name:      "admin_edits_total",
		Help:      "Admin setting submissions by field and outcome",
	}, []string{"field", "result"})

	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invitebot",
		Name:      "updates_handled_total",
		Help:      "Telegram updates handled by action",
	}, []string{"action"})

	UpdateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "invitebot",
		Name:      "update_duration_seconds",
		Help:      "Time spent handling one update.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	AdminSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "invitebot",
		Name:      "admin_sessions_pending",
		Help:      "Conversations waiting for admin free text",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
