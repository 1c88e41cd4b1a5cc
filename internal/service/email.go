package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridDispatcher struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewSendGridDispatcher(apiKey, fromEmail, fromName string) NotificationDispatcher {
	return newSendGridDispatcher(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridDispatcher(client mailSender, fromEmail, fromName string) *sendGridDispatcher {
	return &sendGridDispatcher{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (d *sendGridDispatcher) send(ctx context.Context, toName, to, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)

	from := mail.NewEmail(d.fromName, d.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail(toName, to), body, "")
	response, err := d.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (d *sendGridDispatcher) NotifyApproved(ctx context.Context, req *domain.RegistrationRequest, link string, expiresAt time.Time) error {
	return d.send(ctx, req.Name, req.Email, "Your administrator access was approved", approvedBody(req, link, expiresAt))
}

func (d *sendGridDispatcher) NotifyRejected(ctx context.Context, req *domain.RegistrationRequest) error {
	return d.send(ctx, req.Name, req.Email, "Your administrator access request", rejectedBody(req))
}

func (d *sendGridDispatcher) SendPendingDigest(ctx context.Context, recipient string, pending []domain.RegistrationRequest) error {
	subject := fmt.Sprintf("%d registration request(s) awaiting review", len(pending))
	return d.send(ctx, "", recipient, subject, digestBody(pending))
}

func approvedBody(req *domain.RegistrationRequest, link string, expiresAt time.Time) string {
	return fmt.Sprintf("Hello %s,\n\nYour request for administrator access has been approved.\n\n"+
		"Set your password using the link below. It can be used once and expires on %s.\n\n%s\n",
		req.Name, expiresAt.UTC().Format(time.RFC1123), link)
}

func rejectedBody(req *domain.RegistrationRequest) string {
	body := fmt.Sprintf("Hello %s,\n\nYour request for administrator access was not approved.", req.Name)
	if req.RejectionReason != nil && *req.RejectionReason != "" {
		body += fmt.Sprintf("\n\nReason: %s", *req.RejectionReason)
	}
	return body + "\n"
}

func digestBody(pending []domain.RegistrationRequest) string {
	var b strings.Builder
	b.WriteString("The following registration requests are waiting for review:\n\n")
	for _, req := range pending {
		fmt.Fprintf(&b, "- %s <%s>, submitted %s\n", req.Name, req.Email, req.CreatedAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// logDispatcher writes notifications to the log instead of sending them.
type logDispatcher struct{}

func NewLogDispatcher() NotificationDispatcher {
	return logDispatcher{}
}

func (logDispatcher) NotifyApproved(_ context.Context, req *domain.RegistrationRequest, link string, expiresAt time.Time) error {
	logger.Info("Approval notification", "requestID", req.ID, "to", req.Email, "expiresAt", expiresAt)
	logger.Debug("Approval notification link", "requestID", req.ID, "link", link)
	return nil
}

func (logDispatcher) NotifyRejected(_ context.Context, req *domain.RegistrationRequest) error {
	logger.Info("Rejection notification", "requestID", req.ID, "to", req.Email)
	return nil
}

func (logDispatcher) SendPendingDigest(_ context.Context, recipient string, pending []domain.RegistrationRequest) error {
	logger.Info("Pending digest", "to", recipient, "count", len(pending))
	return nil
}
