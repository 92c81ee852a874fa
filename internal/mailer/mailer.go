// Package mailer sends the acceptance email after a successful
// submission. Sending is best effort: a failure is reported to the
// caller but never undoes the stored submission.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

// Acceptance holds the display fields of the confirmation email.
type Acceptance struct {
	FullName      string
	OrgName       string
	Track         string
	AwardCategory string
	ReferenceID   string
	SubmittedAt   string
}

const acceptanceSubject = "Green Guardian Awards – Submission Accepted"

var acceptanceTmpl = template.Must(template.New("acceptance").Parse(`
<p>Hi {{.FullName}},</p>

<p>
  Thank you for submitting your nomination to the
  <strong>Green Guardian Awards</strong>.
</p>

<p>
  We're pleased to confirm that your submission has been
  <strong>successfully received and accepted</strong> under the
  <strong>{{.Track}}</strong> track (<strong>{{.AwardCategory}}</strong>).
</p>

<ul>
  <li><strong>Organization:</strong> {{.OrgName}}</li>
  <li><strong>Track:</strong> {{.Track}}</li>
  <li><strong>Category:</strong> {{.AwardCategory}}</li>
  <li><strong>Reference ID:</strong> {{.ReferenceID}}</li>
  <li><strong>Date Submitted:</strong> {{.SubmittedAt}}</li>
</ul>

<p>
  Your entry will now proceed to the evaluation phase.
  Should we require any clarification, we'll contact you via this email.
</p>

<p>
  Best regards,<br />
  <strong>Green Guardian Awards Team</strong>
</p>
`))

// RenderAcceptance produces the subject and HTML body.
func RenderAcceptance(a Acceptance) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := acceptanceTmpl.Execute(&buf, a); err != nil {
		return "", "", fmt.Errorf("render acceptance email: %w", err)
	}
	return acceptanceSubject, buf.String(), nil
}

// Sender delivers acceptance emails.
type Sender interface {
	SendAcceptance(to string, a Acceptance) error
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) SendAcceptance(to string, a Acceptance) error {
	if a.SubmittedAt == "" {
		a.SubmittedAt = time.Now().Format("January 2, 2006")
	}

	subject, html, err := RenderAcceptance(a)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send acceptance email: %w", err)
	}
	return nil
}
