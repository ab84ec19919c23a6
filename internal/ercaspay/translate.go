package ercaspay

import (
	"encoding/json"
	"strconv"
)

// ErrorCodeRequestException marks failures of the HTTP round trip itself
// (DNS, refused connection, timeout). It is a third error class, distinct
// from gateway-reported HTTP statuses.
const ErrorCodeRequestException = "RequestException"

const fallbackExplanation = "Something went wrong on our end."

// statusRecords are the fully-specified responses: these statuses always map
// to the same message and explanation regardless of the upstream body.
var statusRecords = map[int]GatewayResponse{
	401: {Message: "Unauthorized", Explanation: "Authentication error. Please verify your API key or token."},
	403: {Message: "Forbidden", Explanation: "You do not have permission to perform this action."},
	404: {Message: "Not Found", Explanation: "The requested resource could not be found."},
}

// statusMessages maps the remaining recognized statuses to a generic message;
// the explanation comes from the upstream body when it carries one.
var statusMessages = map[int]string{
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	422: "Unprocessable",
	429: "Too Many Requests",
	504: "Gateway Timeout",
	507: "Insufficient Storage",
	511: "Network Authentication Required",
}

// translateStatus converts a non-2xx gateway response into the error mapping
// callers receive. Statuses outside both tables come back as "Unknown error".
func translateStatus(status int, body []byte) *GatewayResponse {
	code := strconv.Itoa(status)

	if record, ok := statusRecords[status]; ok {
		record.ErrorCode = code
		return &record
	}

	message, ok := statusMessages[status]
	if !ok {
		message = "Unknown error"
	}

	var upstream struct {
		ErrorMessage string `json:"errorMessage"`
	}
	explanation := fallbackExplanation
	if err := json.Unmarshal(body, &upstream); err == nil && upstream.ErrorMessage != "" {
		explanation = upstream.ErrorMessage
	}

	return &GatewayResponse{
		ErrorCode:   code,
		Message:     message,
		Explanation: explanation,
	}
}

// requestException wraps a transport-level failure as an error mapping so the
// caller sees the same shape as gateway failures, under its own error code.
func requestException(err error) *GatewayResponse {
	return &GatewayResponse{
		ErrorCode:   ErrorCodeRequestException,
		Message:     "Error sending request",
		Explanation: err.Error(),
	}
}
