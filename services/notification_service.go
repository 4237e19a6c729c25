package services

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"

	"campus-events/models"
	"campus-events/utils"
)

// MailNotifier sends registration confirmations through the app's mail
// client. Sends go through a circuit breaker so a dead SMTP relay stops
// costing a timeout per registration; registrations themselves are never
// blocked on the outcome.
type MailNotifier struct {
	app     core.App
	breaker *utils.CircuitBreaker
}

func NewMailNotifier(app core.App) *MailNotifier {
	return &MailNotifier{
		app:     app,
		breaker: utils.NewCircuitBreaker("confirmation-mail"),
	}
}

func (n *MailNotifier) SendConfirmation(ctx context.Context, event *models.Event, p *models.Participant) error {
	message := &mailer.Message{
		From: mail.Address{
			Name:    n.app.Settings().Meta.SenderName,
			Address: n.app.Settings().Meta.SenderAddress,
		},
		To:      []mail.Address{{Name: p.Name, Address: p.Email}},
		Subject: fmt.Sprintf("Registration Confirmed for %s", event.Title),
		Text:    confirmationBody(event, p),
	}

	_, err := n.breaker.Execute(ctx, func() (any, error) {
		return nil, n.app.NewMailClient().Send(message)
	})
	return err
}

func confirmationBody(event *models.Event, p *models.Participant) string {
	eventDate := event.EventDate.Format("Monday, January 2, 2006")

	return fmt.Sprintf(`Dear %s,

Thank you for registering for %s!

Your registration details:
- Name: %s
- Email: %s
- Mobile: %s
- Class: %s
- Department: %s

Event Details:
- Event: %s
- Date: %s
- Time: %s
- Venue: %s

Please arrive 15 minutes before the event starts. Don't forget to bring your ID card.

We look forward to seeing you there!

Best regards,
Event Management Team
`,
		p.Name, event.Title,
		p.Name, p.Email, p.MobileNumber, p.Class, p.Department,
		event.Title, eventDate, event.EventTime, venueOrDefault(event),
	)
}

func venueOrDefault(event *models.Event) string {
	if event.Location != "" {
		return event.Location
	}
	return "Campus Auditorium"
}
