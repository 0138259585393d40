// Package email renders and delivers transactional mail over SMTP.
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"github.com/Dexter0900/TaskEngineX/internal/config"
)

// Sender renders templates and talks SMTP. With no SMTP host configured it
// logs and drops mail, which keeps local development working.
type Sender struct {
	cfg       *config.Config
	templates map[string]*template.Template
}

func NewSender(cfg *config.Config) *Sender {
	s := &Sender{
		cfg:       cfg,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

type magicLinkData struct {
	Name string
	Link string
}

type taskAssignedData struct {
	Name         string
	TaskTitle    string
	AssignerName string
}

type approvalResultData struct {
	Name      string
	TaskTitle string
	Verdict   string
}

func (s *Sender) loadTemplates() {
	s.templates["magic-link"] = template.Must(template.New("magic-link").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #10b981;">Sign in to TaskEngineX</h2>
    <p>Hi {{.Name}},</p>
    <p>Click the button below to sign in. The link expires shortly.</p>
    <a href="{{.Link}}" style="display: inline-block; background: #10b981; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px;">Sign In</a>
    <p style="font-size: 12px; color: #6b7280; margin-top: 24px;">If you did not request this email you can ignore it.</p>
</body>
</html>
`))

	s.templates["task-assigned"] = template.Must(template.New("task-assigned").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #10b981;">New Task Assigned</h2>
    <p>Hi {{.Name}},</p>
    <p><strong>{{.AssignerName}}</strong> assigned you a task:</p>
    <p style="background: #f9fafb; padding: 16px; border-radius: 6px;"><strong>{{.TaskTitle}}</strong></p>
    <p style="font-size: 12px; color: #6b7280; margin-top: 24px;">TaskEngineX</p>
</body>
</html>
`))

	s.templates["approval-result"] = template.Must(template.New("approval-result").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #10b981;">Task {{.Verdict}}</h2>
    <p>Hi {{.Name}},</p>
    <p>Your submitted task was <strong>{{.Verdict}}</strong>:</p>
    <p style="background: #f9fafb; padding: 16px; border-radius: 6px;"><strong>{{.TaskTitle}}</strong></p>
    <p style="font-size: 12px; color: #6b7280; margin-top: 24px;">TaskEngineX</p>
</body>
</html>
`))
}

// SendMagicLink delivers a one-time sign-in link.
func (s *Sender) SendMagicLink(to, name, link string) error {
	return s.sendTemplate(to, "Sign in to TaskEngineX", "magic-link", magicLinkData{Name: name, Link: link})
}

// SendTaskAssigned tells a user they received a task.
func (s *Sender) SendTaskAssigned(to, name, taskTitle, assignerName string) error {
	return s.sendTemplate(to, "New task assigned: "+taskTitle, "task-assigned",
		taskAssignedData{Name: name, TaskTitle: taskTitle, AssignerName: assignerName})
}

// SendApprovalResult tells a user the outcome of their submission.
func (s *Sender) SendApprovalResult(to, name, taskTitle string, approved bool) error {
	verdict := "approved"
	if !approved {
		verdict = "rejected"
	}
	return s.sendTemplate(to, "Task "+verdict+": "+taskTitle, "approval-result",
		approvalResultData{Name: name, TaskTitle: taskTitle, Verdict: verdict})
}

func (s *Sender) sendTemplate(to, subject, name string, data any) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return s.send(to, subject, body.String())
}

func (s *Sender) send(to, subject, htmlBody string) error {
	if s.cfg.SMTPHost == "" {
		log.Printf("✉️ [email] SMTP not configured, dropping mail to %s (%s)", to, subject)
		return nil
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.cfg.SMTPFromName, s.cfg.SMTPFrom))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if s.cfg.SMTPUseTLS {
		return s.sendTLS(addr, auth, to, msg.Bytes())
	}
	if err := smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// sendTLS dials with implicit TLS, for providers that do not offer STARTTLS
// on the submission port.
func (s *Sender) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.SMTPHost})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}
