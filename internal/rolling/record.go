// Package rolling maintains the per-merchant rolling average of webhook
// response latency.
package rolling

// Record is the Merchant Latency Record stored in the cache, one per
// shop_id.
type Record struct {
	TimeResponses  []float64 `json:"time_responses"`
	TotalResponses float64   `json:"total_responses"`
	AvgResponse    float64   `json:"avg_response"`
}
