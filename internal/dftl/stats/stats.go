// Package stats collects the counters and histograms spec'd in §6/§4.E:
// cache size, a dirty-entries-flushed-per-mapping-write histogram, and
// per-TPID hit counts. It is backed by prometheus/client_golang so the
// numbers can be scraped the way the rest of the retrieved corpus exposes
// metrics, while still offering a plain Snapshot for tests.
package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the DFTL's stats collector. The zero value is not usable; build
// one with New.
type Sink struct {
	registry *prometheus.Registry

	cacheSize      prometheus.Gauge
	cacheThreshold prometheus.Gauge
	userWrites     prometheus.Counter
	tpidHits       *prometheus.CounterVec
	cleansPerWrite prometheus.Histogram

	totalUserWrites int64
	hitsByTPID      map[int64]int64
}

// New creates a Sink and registers its collectors with a fresh registry.
func New() *Sink {
	s := &Sink{
		registry: prometheus.NewRegistry(),
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dftl_cache_size",
			Help: "Number of entries currently resident in the cached mapping table.",
		}),
		cacheThreshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dftl_cache_threshold",
			Help: "Configured maximum resident CMT entry count.",
		}),
		userWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dftl_user_writes_total",
			Help: "Total number of user write I/Os observed.",
		}),
		tpidHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dftl_tpid_hits_total",
			Help: "Cache hit count per translation-page id.",
		}, []string{"tpid"}),
		cleansPerWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dftl_cleans_per_mapping_write",
			Help:    "Number of dirty entries flipped clean by a single mapping-write completion.",
			Buckets: prometheus.LinearBuckets(0, 64, 17), // 0..1024 in steps of 64
		}),
		hitsByTPID: make(map[int64]int64),
	}
	s.registry.MustRegister(s.cacheSize, s.cacheThreshold, s.userWrites, s.tpidHits, s.cleansPerWrite)
	return s
}

// Registry exposes the underlying prometheus registry for an HTTP handler.
func (s *Sink) Registry() *prometheus.Registry { return s.registry }

// RecordUserWrite increments the user-write counter.
func (s *Sink) RecordUserWrite() {
	s.userWrites.Inc()
	s.totalUserWrites++
}

// RecordHit increments the hit counter for a translation page.
func (s *Sink) RecordHit(tpid int64) {
	s.tpidHits.WithLabelValues(tpidLabel(tpid)).Inc()
	s.hitsByTPID[tpid]++
}

// RecordMappingWrite sets the cache-size and cache-threshold gauges to the
// values at this mapping-write completion and adds one histogram
// observation for the number of entries it cleaned. No per-completion
// record is kept: each call overwrites the gauges, and the user-write
// total is only the running counter kept by RecordUserWrite.
func (s *Sink) RecordMappingWrite(cacheSize, cacheThreshold, dirtyEntriesCleaned int) {
	s.cacheSize.Set(float64(cacheSize))
	s.cacheThreshold.Set(float64(cacheThreshold))
	s.cleansPerWrite.Observe(float64(dirtyEntriesCleaned))
}

// Snapshot is a point-in-time, allocation-free-to-read copy of the
// counters that matter to tests and the demo binary.
type Snapshot struct {
	TotalUserWrites int64
	HitsByTPID      map[int64]int64
}

// Snapshot returns a copy of the Go-native counters (not the prometheus
// collectors, which are scraped separately).
func (s *Sink) Snapshot() Snapshot {
	cp := make(map[int64]int64, len(s.hitsByTPID))
	for k, v := range s.hitsByTPID {
		cp[k] = v
	}
	return Snapshot{TotalUserWrites: s.totalUserWrites, HitsByTPID: cp}
}

func tpidLabel(tpid int64) string {
	return strconv.FormatInt(tpid, 10)
}
