package domain

// Channel holds the channel metadata used in the rendered archive header.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RateLimit carries the rate-limit headers of a single API response.
// Observability only: the client never blocks or retries on it.
type RateLimit struct {
	Limit      string
	Remaining  string
	Reset      string
	ResetAfter string
	Bucket     string
	Global     string
}

// Empty reports whether the response carried no rate-limit headers at all.
func (r RateLimit) Empty() bool {
	return r.Limit == "" && r.Remaining == "" && r.Reset == "" &&
		r.ResetAfter == "" && r.Bucket == "" && r.Global == ""
}
