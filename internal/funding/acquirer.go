package funding

import (
	"context"

	"github.com/google/uuid"
)

// Decision statuses returned by an Acquirer.
const (
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Acquirer represents a connector to an external payment processor.
type Acquirer interface {
	Authorize(ctx context.Context, input Authorization) (AuthorizationDecision, error)
}

// Authorization is a request to collect Amount cents from the user's payment method.
type Authorization struct {
	Amount      int64
	Currency    string
	Description string
}

// AuthorizationDecision captures the processor response.
type AuthorizationDecision struct {
	Reference string
	Status    string
}

// DemoAcquirer approves every authorization with a synthetic reference.
type DemoAcquirer struct{}

// Authorize approves the request.
func (DemoAcquirer) Authorize(_ context.Context, _ Authorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: StatusApproved}, nil
}
