package dto

// ErrorResponse is the body of every non-probe error. OperationID echoes
// the X-Request-ID so a failed call can be found in the logs.
type ErrorResponse struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	OperationID string `json:"operationId,omitempty"`
}
