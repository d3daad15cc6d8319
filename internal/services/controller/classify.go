package controller

import "net/http"

// Classify maps the outcome of one controller request to nil or a *TransportError.
// Only the status code decides; the response body is never inspected.
func Classify(op string, resp *http.Response, err error) error {
	if err != nil {
		return &TransportError{Kind: SendFailed, Op: op, Err: err}
	}

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return nil
	case code >= 500 && code < 600:
		return &TransportError{Kind: ServerError, Op: op, StatusCode: code}
	default:
		return &TransportError{Kind: UnexpectedStatus, Op: op, StatusCode: code}
	}
}
