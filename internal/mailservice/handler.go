package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/fitnova/clubapi/internal/common"
)

// NewMailService builds the worker that turns booking created events into
// notification emails for the club inbox.
func NewMailService(mb common.MessageConsumer, host, username, password, sender, recipient string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:    logger,
		recipient: recipient,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendBookingNotification consumes booking created events and mails each
// one to the club inbox, retrying transient SMTP failures with backoff.
func (s *MailService) SendBookingNotification() {
	msgs, err := s.mb.Consume(common.BookingCreatedKey, common.BookingExchange, common.BookingCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var payload struct {
					FirstName   string `json:"first_name"`
					LastName    string `json:"last_name"`
					Email       string `json:"email"`
					Phone       string `json:"phone"`
					ServiceType string `json:"service_type"`
					Trainer     string `json:"trainer"`
					Date        string `json:"date"`
					Time        string `json:"time"`
					Notes       string `json:"notes"`
				}

				err := json.Unmarshal(msg.Body, &payload)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				// exponential backoff with jitter
				const maxRetries = 5
				const baseDelay = 500 * time.Millisecond

				var attempt int
				for attempt = 0; attempt < maxRetries; attempt++ {
					err = s.m.send(s.recipient, payload, "booking_email.html")
					if err == nil {
						s.logger.Info("booking notification sent", slog.String("email", payload.Email))
						msg.Ack(false)
						break
					}

					delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
					s.logger.Info("delaying booking notification", slog.String("email", payload.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))
					time.Sleep(delay)
				}

				if attempt == maxRetries {
					s.logger.Error("could not send booking notification", slog.String("email", payload.Email))
					msg.Ack(false)
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping SendBookingNotification due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) Close() {
	s.cancel()
}
