package jobs

import (
	"context"
	"fmt"

	"library-service-backend/internal/logger"
)

// RunOverdueSweep scans active borrowings past their expected return date
// and emits one notification per overdue borrowing. The sweep mutates
// nothing; it exists for visibility, not enforcement.
func (jr *JobRunner) RunOverdueSweep() {
	jr.runWithRecovery("RunOverdueSweep", func() {
		ctx := context.Background()

		overdue, err := jr.store.BorrowingRepository.ListOverdue(ctx)
		if err != nil {
			logger.Error("Failed to list overdue borrowings", "error", err)
			return
		}

		if len(overdue) == 0 {
			// Empty result still produces a message so operators can tell a
			// quiet day from a dead sweep.
			_ = jr.services.Notifier.Send(ctx, "No borrowings overdue today!")
			logger.Info("Overdue sweep found nothing")
			return
		}

		for _, b := range overdue {
			user, err := jr.store.UserRepository.GetByID(ctx, b.UserID)
			if err != nil {
				logger.Error("Failed to load user for overdue borrowing",
					"borrowing_id", b.ID, "user_id", b.UserID, "error", err)
				continue
			}

			text := fmt.Sprintf(
				"Overdue!\nEmail: %s\nBook: %s\nExpected: %s",
				user.Email, b.Book.Title, b.ExpectedReturnDate.Format("2006-01-02"),
			)
			_ = jr.services.Notifier.SendTo(ctx, user.TelegramChatID, text)

			if err := jr.services.Email.SendOverdueReminder(ctx, user.Email, b.Book.Title, b.ExpectedReturnDate.Format("2006-01-02")); err != nil {
				logger.Error("Failed to send overdue reminder email",
					"borrowing_id", b.ID, "error", err)
			}
		}

		logger.Info("Overdue sweep completed", "count", len(overdue))
	})
}
