package model

import "fmt"

// ValidationError reports bad or missing input to a catalog or roster
// operation. Nothing was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IneligibleError is returned when recurrence or role rules block a claim.
// NextEligible is empty when no date is known.
type IneligibleError struct {
	Task         string
	Member       string
	Reason       string
	NextEligible string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s cannot claim %q: %s", e.Member, e.Task, e.Reason)
}

type InsufficientPointsError struct {
	Member  string
	Balance int
	Price   int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("%s has %d points, %d needed", e.Member, e.Balance, e.Price)
}

type AlreadyOwnedError struct {
	Member   string
	RewardID int64
}

func (e *AlreadyOwnedError) Error() string {
	return fmt.Sprintf("%s already owns reward %d", e.Member, e.RewardID)
}

// NotFoundError usually means the caller acted on stale data, e.g. a claim
// that another parent already settled.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "incorrect parent code"
}
