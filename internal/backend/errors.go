package backend

import (
	"errors"
	"fmt"
)

// Error codes the platform marks plan-gated features with. Both mean the
// tenant's subscription does not cover the attempted operation and get the
// upgrade-prompt treatment instead of a generic failure.
const (
	CodePlanPermissionRequired = "PLAN_PERMISSION_REQUIRED"
	CodeNoActiveSubscription   = "NO_ACTIVE_SUBSCRIPTION"
)

// APIError is the platform's structured error envelope.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend: status %d: %s", e.HTTPStatus, e.Message)
}

// IsPlanPermission reports whether err is a plan/subscription denial.
func IsPlanPermission(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Code == CodePlanPermissionRequired || ae.Code == CodeNoActiveSubscription
}

// Message extracts the server-provided message, or falls back.
func Message(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
