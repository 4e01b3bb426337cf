package service

type eventClass int

const (
	eventClassUnclassified eventClass = iota
	eventClassTransactional
	eventClassSubscription
)

// classifyEventType maps Stripe's open-ended event taxonomy onto the
// closed set of reactions this service has. Both classified buckets
// currently invalidate the whole account's caches; the split is kept
// because subscription events may stop busting the charge caches once
// usage data justifies narrowing it. Broad types like charge.updated
// stay transactional on purpose: stale financial data costs more than
// an extra refetch.
func classifyEventType(eventType string) eventClass {
	switch eventType {
	case "payment_intent.succeeded",
		"payment_intent.payment_failed",
		"payment_intent.canceled",
		"charge.succeeded",
		"charge.failed",
		"charge.refunded",
		"charge.updated",
		"charge.expired",
		"checkout.session.completed",
		"checkout.session.expired",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed":
		return eventClassTransactional
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"customer.subscription.trial_will_end",
		"invoice.payment_succeeded",
		"invoice.payment_failed":
		return eventClassSubscription
	default:
		return eventClassUnclassified
	}
}
