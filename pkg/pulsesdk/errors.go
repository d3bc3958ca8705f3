package pulsesdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeNotOwner            = "not_owner"
	ErrorCodeUserNotFound        = "user_not_found"
	ErrorCodeRoleNotFound        = "role_not_found"
	ErrorCodeSubRoleNotFound     = "sub_role_not_found"
	ErrorCodeNoParentRole        = "no_parent_role"
	ErrorCodeInviteNotFound      = "invite_not_found"
	ErrorCodeIncorrectCredential = "incorrect_credential"
	ErrorCodeUserAlreadyExists   = "user_already_exists"
	ErrorCodeDeliveryFailed      = "delivery_failed"
	ErrorCodeRateLimitExceeded   = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("pulse: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("pulse: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// parseErrorResponse turns an error body into an *APIError. Bodies that are
// not JSON still produce an error carrying the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        http.StatusText(resp.StatusCode),
			Description: string(body),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        er.Error,
		Description: er.ErrorDescription,
	}
}
