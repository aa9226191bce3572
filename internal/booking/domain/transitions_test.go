package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPendingPayment, StatusPaid},
		{StatusPendingPayment, StatusCancelled},
		{StatusPaid, StatusApproved},
		{StatusPaid, StatusRejected},
		{StatusPaid, StatusRefunded},
		{StatusApproved, StatusRejected},
		{StatusApproved, StatusPublished},
		{StatusApproved, StatusRefunded},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be legal", tt.from, tt.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPendingPayment, StatusApproved},
		{StatusPendingPayment, StatusPublished},
		{StatusPendingPayment, StatusRefunded},
		{StatusPaid, StatusPublished},
		{StatusPublished, StatusRefunded},
		{StatusPublished, StatusRejected},
		{StatusRejected, StatusApproved},
		{StatusRefunded, StatusPaid},
		{StatusCancelled, StatusPaid},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be illegal", tt.from, tt.to)
	}
}

func TestOccupying(t *testing.T) {
	assert.True(t, StatusPendingPayment.Occupying())
	assert.True(t, StatusPaid.Occupying())
	assert.True(t, StatusApproved.Occupying())
	assert.True(t, StatusPublished.Occupying())

	assert.False(t, StatusRejected.Occupying())
	assert.False(t, StatusCancelled.Occupying())
	assert.False(t, StatusRefunded.Occupying())
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus("pending_payment")
	assert.True(t, ok)
	assert.Equal(t, StatusPendingPayment, status)

	_, ok = ParseStatus("unknown")
	assert.False(t, ok)
}
