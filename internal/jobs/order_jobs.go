package jobs

import (
	"context"
	"time"

	"proprent-backend/internal/logger"
)

// SendReturnReminders emails customers whose rentals are due back tomorrow.
func (jr *JobRunner) SendReturnReminders() {
	jr.runWithRecovery("SendReturnReminders", func() {
		ctx := context.Background()
		tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

		orders, err := jr.store.Repos().Orders.ListDueOn(ctx, tomorrow)
		if err != nil {
			logger.Error("Failed to list orders due for return", "error", err)
			return
		}

		sent := 0
		for _, o := range orders {
			if o.CustomerEmail == "" {
				continue
			}
			if err := jr.emailSvc.SendReturnReminder(ctx, o.CustomerEmail, o.CustomerName, o.OrderNumber, o.RentalEndDate); err != nil {
				logger.Error("Failed to send return reminder", "order_id", o.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Return reminders sent", "due", len(orders), "sent", sent)
	})
}

// SendOverdueNotices emails customers whose rentals are past the return
// deadline and still out.
func (jr *JobRunner) SendOverdueNotices() {
	jr.runWithRecovery("SendOverdueNotices", func() {
		ctx := context.Background()
		today := time.Now().Format("2006-01-02")

		orders, err := jr.store.Repos().Orders.ListOverdue(ctx, today)
		if err != nil {
			logger.Error("Failed to list overdue orders", "error", err)
			return
		}

		sent := 0
		for _, o := range orders {
			if o.CustomerEmail == "" {
				continue
			}
			due, err := time.Parse("2006-01-02", o.RentalEndDate)
			if err != nil {
				logger.Error("Order has malformed return date", "order_id", o.ID, "rental_end_date", o.RentalEndDate)
				continue
			}
			daysOverdue := int32(time.Since(due).Hours() / 24)
			if daysOverdue < 1 {
				daysOverdue = 1
			}
			if err := jr.emailSvc.SendOverdueNotice(ctx, o.CustomerEmail, o.CustomerName, o.OrderNumber, o.RentalEndDate, daysOverdue); err != nil {
				logger.Error("Failed to send overdue notice", "order_id", o.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Overdue notices sent", "overdue", len(orders), "sent", sent)
	})
}

// ArchiveSweep backfills the archive flag on terminal orders that missed it,
// keeping dashboards honest.
func (jr *JobRunner) ArchiveSweep() {
	jr.runWithRecovery("ArchiveSweep", func() {
		ctx := context.Background()
		repos := jr.store.Repos()

		orders, err := repos.Orders.ListUnarchivedTerminal(ctx)
		if err != nil {
			logger.Error("Failed to list unarchived terminal orders", "error", err)
			return
		}

		archived := 0
		for _, o := range orders {
			if !o.Status.IsTerminal() {
				continue
			}
			if err := repos.Orders.UpdateStatus(ctx, o.ID, o.Status, true); err != nil {
				logger.Error("Failed to archive order", "order_id", o.ID, "error", err)
				continue
			}
			archived++
		}
		logger.Info("Archive sweep completed", "candidates", len(orders), "archived", archived)
	})
}
