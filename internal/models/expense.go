package models

// Expense represents a cost the academy paid other than teacher salaries.
type Expense struct {
	// ID is the store-assigned identifier.
	ID string `json:"id"`

	// Item is the short label (e.g., "Office Rent").
	Item string `json:"item" validate:"required"`

	// Cost is the amount paid.
	Cost float64 `json:"cost" validate:"gte=0"`

	// Date is the payment date (YYYY-MM-DD), used for monthly bucketing.
	Date string `json:"date" validate:"required,isodate"`

	// Description is free text.
	Description string `json:"description"`
}

// ExpensePatch is a partial update of an Expense.
type ExpensePatch struct {
	Item        *string  `json:"item,omitempty" validate:"omitempty,min=1"`
	Cost        *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Date        *string  `json:"date,omitempty" validate:"omitempty,isodate"`
	Description *string  `json:"description,omitempty"`
}

// Apply returns e with the non-nil fields of p merged in.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Item != nil {
		e.Item = *p.Item
	}
	if p.Cost != nil {
		e.Cost = *p.Cost
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	return e
}
