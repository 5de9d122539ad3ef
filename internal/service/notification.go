package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"library-service-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// telegramNotifier pushes plain-text messages to a Telegram chat via the
// bot API. Failures are logged, never propagated.
type telegramNotifier struct {
	botToken      string
	defaultChatID string
	httpClient    *http.Client
}

func NewTelegramNotifier(botToken, defaultChatID string) Notifier {
	return &telegramNotifier{
		botToken:      botToken,
		defaultChatID: defaultChatID,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *telegramNotifier) Send(ctx context.Context, text string) error {
	return n.SendTo(ctx, n.defaultChatID, text)
}

func (n *telegramNotifier) SendTo(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		chatID = n.defaultChatID
	}

	body, _ := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to build telegram request", "error", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to send telegram message", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Error("Telegram rejected message", "status", resp.Status)
		return fmt.Errorf("telegram: %s", resp.Status)
	}
	return nil
}

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) send(to, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, plainText)

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

func (s *sendGridEmailService) SendPaymentConfirmation(ctx context.Context, email string, borrowingID int32, amountCents int64) error {
	subject := fmt.Sprintf("Payment received for borrowing #%d", borrowingID)
	body := fmt.Sprintf(
		"Hello,\n\nWe received your payment of $%.2f for borrowing #%d. Thank you!\n\nThe Library Team",
		float64(amountCents)/100, borrowingID,
	)
	return s.send(email, subject, body)
}

func (s *sendGridEmailService) SendOverdueReminder(ctx context.Context, email, bookTitle string, expectedReturn string) error {
	subject := fmt.Sprintf("Overdue: %s", bookTitle)
	body := fmt.Sprintf(
		"Hello,\n\nYour borrowing of \"%s\" was due on %s. Please return it or settle the fine.\n\nThe Library Team",
		bookTitle, expectedReturn,
	)
	return s.send(email, subject, body)
}
