package model

type PaymentSource string

const (
	SourcePaymentIntents PaymentSource = "payment_intents"
	SourceCharges        PaymentSource = "charges"
)

// NormalizedPayment is the single shape both Stripe listing endpoints
// converge on; cache and summary consumers never see which endpoint
// produced a record.
type NormalizedPayment struct {
	ID             string        `json:"id"`
	Source         PaymentSource `json:"source"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	Created        int64         `json:"created"`
	Status         string        `json:"status"`
	Paid           bool          `json:"paid"`
	Customer       string        `json:"customer,omitempty"`
	FailureCode    string        `json:"failure_code,omitempty"`
	FailureMessage string        `json:"failure_message,omitempty"`
}

type PaymentSummary struct {
	RangeDays      int           `json:"range_days"`
	DayOffset      int           `json:"day_offset"`
	TotalCount     int           `json:"total_count"`
	SucceededCount int           `json:"succeeded_count"`
	FailedCount    int           `json:"failed_count"`
	GrossAmount    int64         `json:"gross_amount"` // succeeded payments only, minor units
	Currency       string        `json:"currency,omitempty"`
	Source         PaymentSource `json:"source"`
}
