package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"scanimals-checkout/internal/config"
	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
)

var reportBodyTemplate = template.Must(template.New("report").Parse(`<html>
	<body>
		<h2>{{.Title}}</h2>
		<p>{{.Date}}</p>
		<table>
			<tr><td>Total Items</td><td>{{.TotalCount}}</td></tr>
			<tr><td>Overdue Items</td><td>{{.OverdueCount}}</td></tr>
			<tr><td>Overdue Rate</td><td>{{.OverdueRate}}</td></tr>
		</table>
		<table>
			<thead><tr><th>Item</th><th>Checked Out By</th><th>Checked Out</th><th>Status</th></tr></thead>
			<tbody>{{.Rows}}</tbody>
		</table>
	</body>
</html>`))

// NewEmailService builds the provider selected in config
func NewEmailService(cfg config.EmailConfig) (EmailService, error) {
	switch cfg.Provider {
	case "", "sendgrid":
		return NewSendGridEmailService(sendgrid.NewSendClient(cfg.SendGrid.APIKey), cfg.From, cfg.FromName, cfg.SendGrid.TemplateID), nil
	case "smtp":
		return NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.From), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}

func reportSubject(e domain.ReportEmail) string {
	return fmt.Sprintf("%s - %s", e.Title, e.Date)
}

func reportPlainText(e domain.ReportEmail) string {
	return fmt.Sprintf("%s\n%s\n\nTotal Items: %d\nOverdue Items: %d\nOverdue Rate: %s\n",
		e.Title, e.Date, e.TotalCount, e.OverdueCount, e.OverdueRate)
}

func reportHTML(e domain.ReportEmail) (string, error) {
	var buf bytes.Buffer
	err := reportBodyTemplate.Execute(&buf, struct {
		domain.ReportEmail
		Rows template.HTML
	}{e, template.HTML(e.RowsHTML)})
	if err != nil {
		return "", fmt.Errorf("failed to render report email: %w", err)
	}
	return buf.String(), nil
}

// templateData is the dynamic data handed to a SendGrid template
func templateData(e domain.ReportEmail) map[string]interface{} {
	return map[string]interface{}{
		"to_email":      e.Recipient,
		"report_title":  e.Title,
		"report_date":   e.Date,
		"total_items":   e.TotalCount,
		"overdue_items": e.OverdueCount,
		"overdue_rate":  e.OverdueRate,
		"item_rows":     e.RowsHTML,
	}
}

// SendGridClient is satisfied by *sendgrid.Client
type SendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client     SendGridClient
	fromEmail  string
	fromName   string
	templateID string
}

func NewSendGridEmailService(client SendGridClient, fromEmail, fromName, templateID string) EmailService {
	return &sendGridEmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		templateID: templateID,
	}
}

func (s *sendGridEmailService) buildMessage(e domain.ReportEmail) (*mail.SGMailV3, error) {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", e.Recipient)

	if s.templateID != "" {
		m := mail.NewV3Mail()
		m.SetFrom(from)
		m.SetTemplateID(s.templateID)
		p := mail.NewPersonalization()
		p.AddTos(to)
		for k, v := range templateData(e) {
			p.SetDynamicTemplateData(k, v)
		}
		m.AddPersonalizations(p)
		return m, nil
	}

	html, err := reportHTML(e)
	if err != nil {
		return nil, err
	}
	return mail.NewSingleEmail(from, reportSubject(e), to, reportPlainText(e), html), nil
}

func (s *sendGridEmailService) SendReport(ctx context.Context, e domain.ReportEmail) error {
	m, err := s.buildMessage(e)
	if err != nil {
		return err
	}

	logger.ExternalServiceCall("sendgrid", "SendReport", "recipient", e.Recipient, "template", s.templateID != "")
	resp, err := s.client.SendWithContext(ctx, m)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "SendReport", err, "recipient", e.Recipient)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	return nil
}

type smtpEmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPEmailService(host string, port int, username, password, from string) EmailService {
	return &smtpEmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *smtpEmailService) buildMessage(e domain.ReportEmail) (*gomail.Message, error) {
	html, err := reportHTML(e)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", e.Recipient)
	m.SetHeader("Subject", reportSubject(e))
	m.SetBody("text/plain", reportPlainText(e))
	m.AddAlternative("text/html", html)
	return m, nil
}

func (s *smtpEmailService) SendReport(ctx context.Context, e domain.ReportEmail) error {
	m, err := s.buildMessage(e)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "SendReport", "recipient", e.Recipient, "host", s.host)
	err = d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "SendReport", err, "recipient", e.Recipient)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}
