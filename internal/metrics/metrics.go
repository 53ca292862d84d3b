package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts handled commands by kind and outcome.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixeltown_commands_total",
		Help: "Commands handled by game and whiteboard sessions.",
	}, []string{"kind", "outcome"})

	// TicksTotal counts one-second game ticks fired across all rooms.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixeltown_ticks_total",
		Help: "Game tick callbacks fired.",
	})

	// ActiveRooms tracks rooms with a live session pair.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pixeltown_active_rooms",
		Help: "Rooms currently open.",
	})
)

// Outcome labels for CommandsTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
