// Package mailer sends email through a stored SMTP account, one message
// per recipient, with an optional image attachment.
package mailer

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, email, password string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, email, password),
		from:   email,
	}
}

// Verify dials the SMTP server to prove the credentials work before a
// batch starts; a bad mailbox fails the whole request up front rather
// than once per recipient.
func (s *Sender) Verify() error {
	closer, err := s.dialer.Dial()
	if err != nil {
		return errors.Wrap(err, "smtp dial failed")
	}

	return closer.Close()
}

func (s *Sender) Send(to, subject, body string, attachment *Attachment) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if attachment != nil {
		m.Attach(
			attachment.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(attachment.Data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {attachment.ContentType}}),
		)
	}

	return s.dialer.DialAndSend(m)
}
