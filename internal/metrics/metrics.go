// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records domain events as Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	tokenRefreshes *prometheus.CounterVec
	requests       prometheus.Counter
	duplicates     prometheus.Counter
	votes          prometheus.Counter
	harvests       *prometheus.CounterVec
	roomsCreated   prometheus.Counter
	roomsSwept     prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdqueue_token_refreshes_total",
			Help: "Guest access token refreshes by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdqueue_song_requests_total",
			Help: "Song requests accepted into a queue.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdqueue_duplicate_requests_total",
			Help: "Song requests rejected as duplicates.",
		}),
		votes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdqueue_votes_total",
			Help: "Vote writes, including withdrawals.",
		}),
		harvests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdqueue_harvests_total",
			Help: "Listening-history harvest runs by outcome.",
		}, []string{"outcome"}),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdqueue_rooms_created_total",
			Help: "Rooms created by hosts.",
		}),
		roomsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowdqueue_rooms_swept_total",
			Help: "Rooms deleted by the retention sweep.",
		}),
	}

	c.registry.MustRegister(
		c.tokenRefreshes,
		c.requests,
		c.duplicates,
		c.votes,
		c.harvests,
		c.roomsCreated,
		c.roomsSwept,
	)
	return c
}

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordTokenRefresh counts one refresh attempt.
func (c *Collector) RecordTokenRefresh(ok bool) {
	c.tokenRefreshes.WithLabelValues(outcome(ok)).Inc()
}

// RecordRequest counts one accepted song request.
func (c *Collector) RecordRequest() {
	c.requests.Inc()
}

// RecordDuplicate counts one duplicate rejection.
func (c *Collector) RecordDuplicate() {
	c.duplicates.Inc()
}

// RecordVote counts one vote write.
func (c *Collector) RecordVote() {
	c.votes.Inc()
}

// RecordHarvest counts one harvest run.
func (c *Collector) RecordHarvest(ok bool) {
	c.harvests.WithLabelValues(outcome(ok)).Inc()
}

// RecordRoomCreated counts one new room.
func (c *Collector) RecordRoomCreated() {
	c.roomsCreated.Inc()
}

// RecordRoomsSwept counts rooms removed by retention.
func (c *Collector) RecordRoomsSwept(n int64) {
	c.roomsSwept.Add(float64(n))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
