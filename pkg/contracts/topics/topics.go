package topics

const (
	// Bids
	BidPlaced    = "bid_placed"
	MatchSettled = "match_settled"

	// DLQs
	MatchSettledDLQ = "match_settled_dlq"

	// Redis Pub/Sub usado pelo live-service
	LiveUpdatesChannel = "live_updates_broadcast"
)
