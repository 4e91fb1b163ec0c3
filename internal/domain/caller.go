package domain

// Caller is the authenticated identity an operation executes under.
// It is passed explicitly into every core operation; the service layer
// never reads ambient session state.
type Caller struct {
	UserID      int64
	Login       string
	DisplayName string
	Role        Role
}
