package services

import (
	"context"
	"log"

	"roomhub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService owns the scheduled jobs: the nightly contract expiry
// sweep and the morning payment reminders.
type CronService struct {
	db              *gorm.DB
	contractService *ContractService
	notifyService   *NotificationService
	cron            *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB, contractService *ContractService, notifyService *NotificationService) *CronService {
	return &CronService{
		db:              db,
		contractService: contractService,
		notifyService:   notifyService,
		cron:            cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// 00:10 - expire contracts past their end date
	s.cron.AddFunc("10 0 * * *", s.runExpirySweep)

	// 08:30 - remind about unpaid invoices
	s.cron.AddFunc("30 8 * * *", s.runPaymentReminders)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) runExpirySweep() {
	ctx := context.Background()

	expired, err := s.contractService.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("❌ Expiry sweep error: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("✅ Expiry sweep closed %d contract(s)", expired)
	}
	s.notifyService.NotifyContractExpired(expired)
}

func (s *CronService) runPaymentReminders() {
	ctx := context.Background()

	invoices, err := repositories.NewInvoiceRepository(s.db).ListUnpaid(ctx)
	if err != nil {
		log.Printf("❌ Reminder query error: %v", err)
		return
	}

	for _, invoice := range invoices {
		roomNumber := ""
		if invoice.Room != nil {
			roomNumber = invoice.Room.RoomNumber
		}
		s.notifyService.NotifyPaymentReminder(invoice, roomNumber)
	}
	if len(invoices) > 0 {
		log.Printf("✅ Sent %d payment reminder(s)", len(invoices))
	}
}
