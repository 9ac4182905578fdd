package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig agrupa los datos del servidor de correo.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

type deliverFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender envia codigos de acceso via SMTP.
type SMTPSender struct {
	cfg     SMTPConfig
	deliver deliverFunc
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp from is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if strings.TrimSpace(cfg.FromName) == "" {
		cfg.FromName = "Job Portal"
	}
	s := &SMTPSender{cfg: cfg}
	s.deliver = smtp.SendMail
	if cfg.UseTLS {
		s.deliver = s.sendImplicitTLS
	}
	return s, nil
}

func (s *SMTPSender) SendLoginCode(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return errors.New("to email is required")
	}
	msg := LoginCodeMessage(s.cfg.From, s.cfg.FromName, toEmail, code, expiresAt)
	return s.send(msg)
}

func (s *SMTPSender) send(msg Message) error {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.deliver(addr, auth, msg.From, []string{msg.To}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp deliver to %s: %w", msg.To, err)
	}
	return nil
}

// sendImplicitTLS abre la conexion ya cifrada (puerto 465); smtp.SendMail solo hace STARTTLS.
func (s *SMTPSender) sendImplicitTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
