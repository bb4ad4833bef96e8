package bulkimport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rxline/pharmaflow/internal/drugs"
)

// Expected CSV column order:
// Drug Type, Name, Batch No, Description, Stock, Manufacturing Date,
// Expiration Date, Price, Category.
const (
	colDrugType = iota
	colName
	colBatchNo
	colDescription
	colStock
	colMfgDate
	colExpDate
	colPrice
	colCategory
)

const dateLayout = "2006-01-02"

// Row error codes. One bad row never blocks the rest of the batch; each
// failure is recorded under one of these codes with its original data.
const (
	ErrCodeMissingRequiredField = "MissingRequiredField"
	ErrCodeInvalidDateRange     = "InvalidDateRange"
	ErrCodeInvalidNumericField  = "InvalidNumericField"
	ErrCodeInvalidCategory      = "InvalidCategory"
	ErrCodeStoreConflict        = "StoreConflict"
	ErrCodeStoreFailure         = "StoreFailure"
)

// RowError records why one row was rejected. Row is the 1-based index over
// data rows (header excluded); Data carries the original fields so the caller
// can remediate without re-deriving state.
type RowError struct {
	Row     int      `json:"row"`
	Code    string   `json:"error"`
	Message string   `json:"message"`
	Data    []string `json:"data"`
}

// ParsedRow is a row that passed every validation rule, converted into the
// typed fields of a drug-record creation request.
type ParsedRow struct {
	DrugType    string
	Name        string
	BatchNo     string
	Description string
	Stock       int
	MfgDate     string
	ExpDate     string
	Price       float64
	Category    string
}

// ValidateRow turns one raw row into either a ParsedRow or a RowError. It is
// pure; rules run in a fixed order and the first failure wins:
// required fields, date range, numeric fields, category.
func ValidateRow(rowNum int, raw []string) (ParsedRow, *RowError) {
	get := func(idx int) string {
		if idx < len(raw) {
			return strings.TrimSpace(raw[idx])
		}
		return ""
	}

	fail := func(code, msg string) (ParsedRow, *RowError) {
		return ParsedRow{}, &RowError{Row: rowNum, Code: code, Message: msg, Data: raw}
	}

	required := []struct {
		idx  int
		name string
	}{
		{colDrugType, "Drug Type"},
		{colName, "Name"},
		{colBatchNo, "Batch No"},
	}
	for _, r := range required {
		if get(r.idx) == "" {
			return fail(ErrCodeMissingRequiredField, fmt.Sprintf("missing required field: %s", r.name))
		}
	}

	mfgRaw, expRaw := get(colMfgDate), get(colExpDate)
	mfg, err := time.Parse(dateLayout, mfgRaw)
	if err != nil {
		return fail(ErrCodeInvalidDateRange, fmt.Sprintf("unparseable manufacturing date %q", mfgRaw))
	}
	exp, err := time.Parse(dateLayout, expRaw)
	if err != nil {
		return fail(ErrCodeInvalidDateRange, fmt.Sprintf("unparseable expiration date %q", expRaw))
	}
	if !mfg.Before(exp) {
		return fail(ErrCodeInvalidDateRange, fmt.Sprintf("manufacturing date %s is not before expiration date %s", mfgRaw, expRaw))
	}

	stock, err := strconv.Atoi(get(colStock))
	if err != nil || stock < 0 {
		return fail(ErrCodeInvalidNumericField, fmt.Sprintf("stock %q is not a non-negative integer", get(colStock)))
	}
	price, err := strconv.ParseFloat(get(colPrice), 64)
	if err != nil || price < 0 {
		return fail(ErrCodeInvalidNumericField, fmt.Sprintf("price %q is not a non-negative number", get(colPrice)))
	}

	category := get(colCategory)
	if category != "" && !drugs.ValidCategory(category) {
		return fail(ErrCodeInvalidCategory, fmt.Sprintf("category %q is not one of IPD, OPD, OUTREACH", category))
	}

	return ParsedRow{
		DrugType:    get(colDrugType),
		Name:        get(colName),
		BatchNo:     get(colBatchNo),
		Description: get(colDescription),
		Stock:       stock,
		MfgDate:     mfgRaw,
		ExpDate:     expRaw,
		Price:       price,
		Category:    category,
	}, nil
}
