package metrics

import "github.com/prometheus/client_golang/prometheus"

// BidMetrics agrupa os contadores do bid-service
type BidMetrics struct {
	BidsPlaced    *prometheus.CounterVec // category, kind=create|update
	BidsRejected  *prometheus.CounterVec // reason
	Settlements   *prometheus.CounterVec // outcome=decisive|no_result
	HouseTake     prometheus.Counter
	StatsRebuilds prometheus.Counter
	PublishErrors *prometheus.CounterVec // topic
}

func NewBidMetrics(reg prometheus.Registerer) *BidMetrics {
	m := &BidMetrics{
		BidsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bid_placed_total", Help: "palpites registrados",
		}, []string{"category", "kind"}),
		BidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bid_rejected_total", Help: "palpites rejeitados por motivo",
		}, []string{"reason"}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bid_settlements_total", Help: "partidas liquidadas",
		}, []string{"outcome"}),
		HouseTake: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bid_house_take_total", Help: "valor retido pela casa (sem vencedores ou resto da divisão)",
		}),
		StatsRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bid_stats_rebuilds_total", Help: "reconstruções completas de estatísticas",
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bid_publish_errors_total", Help: "falhas ao publicar eventos",
		}, []string{"topic"}),
	}
	reg.MustRegister(m.BidsPlaced, m.BidsRejected, m.Settlements, m.HouseTake, m.StatsRebuilds, m.PublishErrors)
	return m
}

// NotifierMetrics: contadores do settlement-notifier
type NotifierMetrics struct {
	Consumed  *prometheus.CounterVec // topic
	Published prometheus.Counter
	Retries   prometheus.Counter
	DLQ       prometheus.Counter
	Errors    *prometheus.CounterVec // stage
}

func NewNotifierMetrics(reg prometheus.Registerer) *NotifierMetrics {
	m := &NotifierMetrics{
		Consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_messages_consumed_total", Help: "mensagens consumidas",
		}, []string{"topic"}),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_live_updates_published_total", Help: "updates publicados no Redis",
		}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_publish_retries_total", Help: "tentativas extras de publish",
		}),
		DLQ: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_dlq_total", Help: "mensagens enviadas para a DLQ",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_errors_total", Help: "erros por estágio",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.Consumed, m.Published, m.Retries, m.DLQ, m.Errors)
	return m
}

// LiveMetrics: conexões e broadcasts do live-service
type LiveMetrics struct {
	Connections prometheus.Gauge
	Broadcasts  *prometheus.CounterVec // type
	Dropped     prometheus.Counter
}

func NewLiveMetrics(reg prometheus.Registerer) *LiveMetrics {
	m := &LiveMetrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "live_ws_connections", Help: "conexões WebSocket abertas",
		}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "live_broadcasts_total", Help: "mensagens entregues por tipo",
		}, []string{"type"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "live_dropped_messages_total", Help: "mensagens descartadas (cliente lento)",
		}),
	}
	reg.MustRegister(m.Connections, m.Broadcasts, m.Dropped)
	return m
}

// GatewayMetrics: requisições roteadas pelo api-gateway
type GatewayMetrics struct {
	Requests *prometheus.CounterVec // upstream, code
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total", Help: "requisições por upstream e status",
		}, []string{"upstream", "code"}),
	}
	reg.MustRegister(m.Requests)
	return m
}
