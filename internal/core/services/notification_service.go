package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"roomhub/internal/adapters/persistence/models"
)

// NotificationService posts billing events to an external webhook
// (Zalo/Telegram bridge, ops channel). Disabled when no webhook URL
// is configured; callers fire and forget.
type NotificationService struct {
	webhookURL string
	client     *http.Client
	enabled    bool
}

// NewNotificationService creates a new notification service
func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		enabled:    webhookURL != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

type webhookPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

func (s *NotificationService) send(event, message string) error {
	if !s.enabled {
		return nil
	}

	body, err := json.Marshal(webhookPayload{Event: event, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// NotifyInvoiceIssued announces a freshly issued invoice
func (s *NotificationService) NotifyInvoiceIssued(invoice *models.Invoice, roomNumber string) {
	message := fmt.Sprintf(
		"🧾 Invoice #%d issued\nRoom: %s\nPeriod: %02d/%d\nTotal: %d VND",
		invoice.ID, roomNumber, invoice.Month, invoice.Year, invoice.TotalAmount,
	)
	if err := s.send("invoice.issued", message); err != nil {
		log.Printf("⚠️ Webhook notify failed: %v", err)
	}
}

// NotifyPaymentReminder nudges about an unpaid invoice
func (s *NotificationService) NotifyPaymentReminder(invoice *models.Invoice, roomNumber string) {
	message := fmt.Sprintf(
		"⏰ Payment reminder\nRoom: %s\nInvoice #%d (%02d/%d)\nOutstanding: %d VND",
		roomNumber, invoice.ID, invoice.Month, invoice.Year, invoice.TotalAmount,
	)
	if err := s.send("invoice.reminder", message); err != nil {
		log.Printf("⚠️ Webhook notify failed: %v", err)
	}
}

// NotifyContractExpired reports contracts closed by the nightly sweep
func (s *NotificationService) NotifyContractExpired(count int) {
	if count == 0 {
		return
	}
	message := fmt.Sprintf("📄 Nightly sweep expired %d contract(s)", count)
	if err := s.send("contract.expired", message); err != nil {
		log.Printf("⚠️ Webhook notify failed: %v", err)
	}
}
