package metrics

// Generation error kinds used as the "kind" label.
const (
	KindTransport = "transport"
	KindAPI       = "api"
	KindMalformed = "malformed"
	KindCanceled  = "canceled"
	KindUnknown   = "unknown"
)
