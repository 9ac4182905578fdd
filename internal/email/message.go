package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message es un correo de texto plano listo para serializar.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	Body     string
	Date     time.Time
}

// LoginCodeMessage arma el correo con el codigo de acceso.
func LoginCodeMessage(from, fromName, to, code string, expiresAt time.Time) Message {
	return Message{
		From:     from,
		FromName: fromName,
		To:       to,
		Subject:  "Your job portal sign-in code",
		Body: fmt.Sprintf(
			"Use %s to sign in to the job portal.\nThe code expires at %s UTC.\nIf you did not request it, ignore this email.\n",
			code,
			expiresAt.UTC().Format(time.RFC3339),
		),
		Date: time.Now().UTC(),
	}
}

func (m Message) fromHeader() string {
	if strings.TrimSpace(m.FromName) == "" {
		return m.From
	}
	return fmt.Sprintf("%s <%s>", m.FromName, m.From)
}

func (m Message) messageID() string {
	host := "localhost"
	if _, after, ok := strings.Cut(m.From, "@"); ok && after != "" {
		host = after
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

// Bytes serializa cabeceras y cuerpo con CRLF.
func (m Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	var b strings.Builder
	for _, h := range [][2]string{
		{"From", m.fromHeader()},
		{"To", m.To},
		{"Subject", m.Subject},
		{"Date", date.Format(time.RFC1123Z)},
		{"Message-ID", m.messageID()},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/plain; charset="UTF-8"`},
	} {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(h[1])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}
