package drugs

import "time"

// Cost-center categories recognized for an ordered or imported line.
const (
	CategoryIPD      = "IPD"
	CategoryOPD      = "OPD"
	CategoryOutreach = "OUTREACH"
)

// ValidCategory reports whether c is one of the three recognized categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryIPD, CategoryOPD, CategoryOutreach:
		return true
	}
	return false
}

// Drug represents the item stored in the drugs DynamoDB table.
// BatchNo is unique per owning entity (CreatedBy); the store enforces that
// with a guard item written in the same transaction.
type Drug struct {
	DrugID      string    `dynamodbav:"drug_id" json:"drug_id"` // PK
	DrugType    string    `dynamodbav:"drug_type" json:"drug_type"`
	Name        string    `dynamodbav:"name" json:"name"`
	BatchNo     string    `dynamodbav:"batch_no" json:"batch_no"`
	Description string    `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Stock       int       `dynamodbav:"stock" json:"stock"`
	MfgDate     string    `dynamodbav:"mfg_date" json:"mfg_date"` // YYYY-MM-DD
	ExpDate     string    `dynamodbav:"exp_date" json:"exp_date"` // YYYY-MM-DD, strictly after MfgDate
	Price       float64   `dynamodbav:"price" json:"price"`
	Category    string    `dynamodbav:"category,omitempty" json:"category,omitempty"` // IPD | OPD | OUTREACH | ""
	CreatedBy   string    `dynamodbav:"created_by" json:"created_by"`                 // owning institute/pharmacy
	CreatedAt   time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updated_at"`
}
