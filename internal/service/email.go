package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"proprent-backend/internal/domain"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendReturnReminder(ctx context.Context, email, name, orderNumber, dueDate string) error {
	subject := fmt.Sprintf("Rental return reminder - order %s", orderNumber)
	body := fmt.Sprintf("Hello %s,\n\nA friendly reminder that your rental order %s is due back on %s before 17:00.\n\nBest regards,\nThe Rental Team", name, orderNumber, dueDate)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendOverdueNotice(ctx context.Context, email, name, orderNumber, dueDate string, daysOverdue int32) error {
	subject := fmt.Sprintf("Overdue rental - order %s", orderNumber)
	body := fmt.Sprintf("Hello %s,\n\nYour rental order %s was due back on %s and is now %d day(s) overdue. Late fees accrue per rental day until the items are returned.\n\nBest regards,\nThe Rental Team", name, orderNumber, dueDate, daysOverdue)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendSettlementReceipt(ctx context.Context, email, name, orderNumber, receiptNumber string, settlement domain.DepositSettlement) error {
	subject := fmt.Sprintf("Deposit settlement %s - order %s", receiptNumber, orderNumber)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour rental order %s has been settled.\n\nDeposit held: %d\nWithheld (damages %d, late %d, cleaning %d): %d\nReturned to you: %d\n",
		name, orderNumber, settlement.DepositHeld,
		settlement.DamageFee, settlement.LateFee, settlement.CleaningFee,
		settlement.Withheld, settlement.ToReturn)
	if settlement.RemainingBalance > 0 {
		body += fmt.Sprintf("\nOutstanding balance after settlement: %d\n", settlement.RemainingBalance)
	}
	body += "\nBest regards,\nThe Rental Team"
	return s.send(email, name, subject, body)
}
