package reliability

// FailureClass buckets synthesis failures for logging and metrics.
type FailureClass string

const (
	FailureAuth    FailureClass = "auth"
	FailureQuota   FailureClass = "quota"
	FailureNetwork FailureClass = "network"
)

// ClassifyHTTPStatus maps a provider HTTP status code to a failure class.
// Anything that is not clearly an auth or quota problem is treated as a
// network/provider fault.
func ClassifyHTTPStatus(code int) FailureClass {
	switch code {
	case 401, 403:
		return FailureAuth
	case 402, 429:
		return FailureQuota
	default:
		return FailureNetwork
	}
}
