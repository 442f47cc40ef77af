package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/adapters/persistence/models"
)

func TestNotificationWebhook(t *testing.T) {
	var received []webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received = append(received, p)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	svc := NewNotificationService(srv.URL)
	require.True(t, svc.IsEnabled())

	invoice := &models.Invoice{ID: 7, Month: 9, Year: 2026, TotalAmount: 3575000}
	svc.NotifyInvoiceIssued(invoice, "101")
	svc.NotifyPaymentReminder(invoice, "101")
	svc.NotifyContractExpired(3)
	// Zero expirations post nothing.
	svc.NotifyContractExpired(0)

	require.Len(t, received, 3)
	assert.Equal(t, "invoice.issued", received[0].Event)
	assert.Contains(t, received[0].Message, "Invoice #7")
	assert.Contains(t, received[0].Message, "101")
	assert.Equal(t, "invoice.reminder", received[1].Event)
	assert.Equal(t, "contract.expired", received[2].Event)
}

func TestNotificationDisabled(t *testing.T) {
	svc := NewNotificationService("")
	assert.False(t, svc.IsEnabled())

	// Must be a silent no-op, not a panic or a network attempt.
	svc.NotifyInvoiceIssued(&models.Invoice{ID: 1}, "101")
	svc.NotifyContractExpired(2)
}
