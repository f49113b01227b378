package kansoku

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mObjectsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "kansoku",
		Name:      "objects_created",
		Help:      "objects that started being tracked",
	})
	mObjectsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "kansoku",
		Name:      "objects_destroyed",
		Help:      "tracked objects that left the scene",
	})
	mTrackedObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "kansoku",
		Name:      "tracked_objects",
		Help:      "objects currently tracked",
	})
	mTrackedMeshRenderers = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "kansoku",
		Name:      "tracked_mesh_renderers",
		Help:      "mesh renderers currently tracked",
	})

	// Records handed to the sink, per output.
	mRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "kansoku",
		Name:      "records",
		Help:      "change records emitted by output",
	}, []string{"output"})
	mNewObjectRecords       = mRecords.WithLabelValues("new_objects")
	mObjectChangeRecords    = mRecords.WithLabelValues("object_changes")
	mTransformRecords       = mRecords.WithLabelValues("transforms")
	mMeshRendererRecords    = mRecords.WithLabelValues("mesh_renderers")
	mRemovedRendererRecords = mRecords.WithLabelValues("removed_mesh_renderers")
	mRemovedObjectRecords   = mRecords.WithLabelValues("removed_objects")

	mFrameLatency = promauto.NewSummary(prometheus.SummaryOpts{
		Subsystem:  "kansoku",
		Name:       "frame_latency_seconds",
		Help:       "time spent in Tracker.Update",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})
	mSinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "kansoku",
		Name:      "sink_errors",
		Help:      "frames the sink failed to flush",
	})
)
