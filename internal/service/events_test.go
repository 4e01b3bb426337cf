package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyEventType(t *testing.T) {
	cases := []struct {
		eventType string
		want      eventClass
	}{
		{"payment_intent.succeeded", eventClassTransactional},
		{"payment_intent.payment_failed", eventClassTransactional},
		{"charge.succeeded", eventClassTransactional},
		{"charge.refunded", eventClassTransactional},
		{"charge.updated", eventClassTransactional},
		{"checkout.session.completed", eventClassTransactional},
		{"checkout.session.async_payment_failed", eventClassTransactional},
		{"customer.subscription.created", eventClassSubscription},
		{"customer.subscription.deleted", eventClassSubscription},
		{"customer.subscription.trial_will_end", eventClassSubscription},
		{"invoice.payment_succeeded", eventClassSubscription},
		{"invoice.payment_failed", eventClassSubscription},
		{"customer.created", eventClassUnclassified},
		{"account.updated", eventClassUnclassified},
		{"payout.paid", eventClassUnclassified},
		{"", eventClassUnclassified},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, classifyEventType(tc.eventType), "type %q", tc.eventType)
	}
}
