package wechat

import "fmt"

// errorCauses maps the platform's most common numeric codes to a
// human-readable cause. Unmapped codes fall back to "unknown error".
var errorCauses = map[int]string{
	40001: "invalid app secret (AppSecret does not match)",
	40013: "invalid AppID",
	42001: "access token expired; create a new client or call InvalidateToken",
	45011: "API called too frequently, slow down",
}

// APIError is an error response from the platform, carrying its numeric
// errcode.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.Code, e.Message)
}

// UserMessage is the operator-facing explanation; stack detail stays in the
// log.
func (e *APIError) UserMessage() string {
	if e.Code != 0 {
		cause, ok := errorCauses[e.Code]
		if !ok {
			cause = "unknown error"
		}
		return fmt.Sprintf("WeChat API error %d: %s", e.Code, cause)
	}
	return "WeChat API error: " + e.Message
}

// NetworkError wraps a transport failure (connect, timeout, bad gateway).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage is the operator-facing explanation.
func (e *NetworkError) UserMessage() string {
	return fmt.Sprintf("network failure while talking to the WeChat API (%s); check connectivity and retry", e.Op)
}
