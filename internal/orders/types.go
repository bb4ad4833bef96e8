package orders

import "time"

// Order statuses
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Item is one ordered line as persisted and as sent over the wire. Pricing,
// batch and name snapshots deliberately stay out of it: the worker
// re-resolves the authoritative price by drug id when it completes the order.
type Item struct {
	DrugID   string `dynamodbav:"drug_id" json:"drug_id"`
	Quantity int    `dynamodbav:"quantity" json:"quantity"`
	Category string `dynamodbav:"category" json:"category"` // IPD | OPD | OUTREACH
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID     string    `dynamodbav:"order_id" json:"order_id"` // PK
	RecipientID string    `dynamodbav:"recipient_id" json:"recipient_id"`
	PharmacyID  string    `dynamodbav:"pharmacy_id,omitempty" json:"pharmacy_id,omitempty"`
	Status      string    `dynamodbav:"status" json:"status"` // PENDING | PROCESSING | COMPLETED | FAILED
	Items       []Item    `dynamodbav:"items" json:"items"`
	Notes       string    `dynamodbav:"notes,omitempty" json:"notes,omitempty"`
	Amount      float64   `dynamodbav:"amount,omitempty" json:"amount,omitempty"` // set by the worker at completion
	CreatedAt   time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updated_at"`
	Attempts    int       `dynamodbav:"attempts,omitempty" json:"attempts,omitempty"`
}

// SubmissionPayload is the only artifact the validator hands to the gateway.
type SubmissionPayload struct {
	RecipientID string `json:"recipient_id"`
	Items       []Item `json:"items"`
	Notes       string `json:"notes,omitempty"`
}
