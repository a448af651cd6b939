package domain

// Status is the persisted lifecycle status of an order.
type Status string

const (
	StatusCreated   Status = "CREATED"   // shell persisted, reservation in progress
	StatusCompleted Status = "COMPLETED" // every item reserved and persisted
	StatusFailed    Status = "FAILED"    // compensated, no items persisted
)
