// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "pebble"
	metricsInterval = 10 * time.Second
)

// gauge is sampled from [pebble.Metrics] every [metricsInterval].
type gauge struct {
	prometheus.Gauge
	sample func(*pebble.Metrics) float64
}

var gauges = []struct {
	name   string
	help   string
	sample func(*pebble.Metrics) float64
}{
	{"tombstone_count", "approximate count of internal tombstones", func(m *pebble.Metrics) float64 {
		return float64(m.Keys.TombstoneCount)
	}},
	{"obsolete_table_size", "bytes in tables no longer referenced by the db", func(m *pebble.Metrics) float64 {
		return float64(m.Table.ObsoleteSize)
	}},
	{"obsolete_table_count", "table files no longer referenced by the db", func(m *pebble.Metrics) float64 {
		return float64(m.Table.ObsoleteCount)
	}},
	{"zombie_table_size", "bytes in unreferenced tables still held by iterators", func(m *pebble.Metrics) float64 {
		return float64(m.Table.ZombieSize)
	}},
	{"zombie_table_count", "unreferenced table files still held by iterators", func(m *pebble.Metrics) float64 {
		return float64(m.Table.ZombieCount)
	}},
	{"obsolete_wal_size", "bytes in WAL files no longer needed by the db", func(m *pebble.Metrics) float64 {
		return float64(m.WAL.ObsoletePhysicalSize)
	}},
	{"obsolete_wal_count", "WAL files no longer needed by the db", func(m *pebble.Metrics) float64 {
		return float64(m.WAL.ObsoleteFiles)
	}},
	{"disk_space_usage", "total bytes used by the db on disk", func(m *pebble.Metrics) float64 {
		return float64(m.DiskSpaceUsage())
	}},
}

type metrics struct {
	stallStart time.Time

	readLatency  metric.Averager
	writeLatency metric.Averager
	writeStall   metric.Averager
	batchBytes   metric.Averager

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge
	sampled           []gauge
}

func newAverager(r prometheus.Registerer, name, help string, errs *wrappers.Errs) metric.Averager {
	a, err := metric.NewAverager(namespace+"_"+name, help, r)
	errs.Add(err)
	return a
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	var (
		r    = prometheus.NewRegistry()
		errs = wrappers.Errs{}
		m    = &metrics{
			compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compactions",
				Help:      "number of compactions by input level",
			}, []string{"level"}),
			activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_compactions",
				Help:      "number of active compactions",
			}),
		}
	)
	m.readLatency = newAverager(r, "read_latency", "time spent waiting for db get", &errs)
	m.writeLatency = newAverager(r, "batch_write_latency", "time spent committing a batch", &errs)
	m.writeStall = newAverager(r, "write_stall", "time spent waiting for disk write", &errs)
	m.batchBytes = newAverager(r, "batch_bytes", "bytes written per committed batch", &errs)
	errs.Add(
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
	)
	for _, g := range gauges {
		pg := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      g.name,
			Help:      g.help,
		})
		errs.Add(r.Register(pg))
		m.sampled = append(m.sampled, gauge{Gauge: pg, sample: g.sample})
	}
	return r, m, errs.Err
}

func (m *metrics) observe(pm *pebble.Metrics) {
	for _, g := range m.sampled {
		g.Set(g.sample(pm))
	}
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.stallStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.metrics.observe(db.db.Metrics())
		case <-db.closing:
			return
		}
	}
}
