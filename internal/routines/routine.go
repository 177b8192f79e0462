package routines

import "time"

// Routine is a named workout template a user defines once and reuses
// across sessions. Fields are immutable after creation.
type Routine struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
