// Package metrics defines the Prometheus metrics for the live subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection metrics
var (
	// ConnectedClients tracks currently registered WebSocket connections.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_connected_clients",
			Help: "Currently registered WebSocket connections",
		},
	)

	// IdentifiedUsers tracks connections with a bound username.
	IdentifiedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_identified_users",
			Help: "Connections with a bound username",
		},
	)

	// ConnectionsEvictedTotal tracks forced disconnects by reason.
	ConnectionsEvictedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_connections_evicted_total",
			Help: "Forced disconnects by reason (timeout, duplicate_login, kicked)",
		},
		[]string{"reason"},
	)

	// ConnectionsRejectedTotal tracks upgrade rejections by limit reason.
	ConnectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_connections_rejected_total",
			Help: "Rejected connection attempts by limit reason",
		},
		[]string{"reason"},
	)
)

// Protocol metrics
var (
	// MessagesReceivedTotal tracks inbound messages by type.
	MessagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_messages_received_total",
			Help: "Inbound WebSocket messages by type",
		},
		[]string{"type"},
	)

	// MessagesSentTotal tracks outbound messages by type.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_messages_sent_total",
			Help: "Outbound WebSocket messages by type",
		},
		[]string{"type"},
	)

	// MessageErrorsTotal tracks rejected inbound messages by error type.
	MessageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_message_errors_total",
			Help: "Rejected inbound messages by error type",
		},
		[]string{"error_type"},
	)

	// BroadcastSendFailures tracks dropped best-effort deliveries.
	BroadcastSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_broadcast_send_failures_total",
			Help: "Outbound deliveries dropped because the transport failed",
		},
	)
)

// Session and feed metrics
var (
	// ActiveJamSessions tracks the number of live jam sessions.
	ActiveJamSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_active_jam_sessions",
			Help: "Number of live jam sessions",
		},
	)

	// ActivityEventsTotal tracks recorded playback activity events.
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_activity_events_total",
			Help: "Recorded playback activity events by action",
		},
		[]string{"action"},
	)

	// HubCommandChannelDepth tracks the hub actor's command backlog.
	HubCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_hub_command_channel_depth",
			Help: "Pending commands in the hub channel",
		},
	)
)
