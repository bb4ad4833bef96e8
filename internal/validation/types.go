package validation

// OrderItem is a single ordered line in an API submission.
type OrderItem struct {
	DrugID   string `json:"drug_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Category string `json:"category" validate:"required,oneof=IPD OPD OUTREACH"` // cost-center tag
}

// CreateOrderRequest is the payload for POST /pharmacy/orders.
type CreateOrderRequest struct {
	RecipientID string      `json:"recipient_id" validate:"required"`     // institute receiving the order
	Items       []OrderItem `json:"items" validate:"required,min=1,dive"` // at least one item
	Notes       string      `json:"notes,omitempty"`
}

// CreateDrugRequest is the payload for POST /drugs.
type CreateDrugRequest struct {
	DrugType    string  `json:"drug_type" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	BatchNo     string  `json:"batch_no" validate:"required"`
	Description string  `json:"description,omitempty"`
	Stock       int     `json:"stock" validate:"min=0"`
	MfgDate     string  `json:"mfg_date" validate:"required,datetime=2006-01-02"`
	ExpDate     string  `json:"exp_date" validate:"required,datetime=2006-01-02"`
	Price       float64 `json:"price" validate:"min=0"`
	Category    string  `json:"category,omitempty" validate:"omitempty,oneof=IPD OPD OUTREACH"`
}
