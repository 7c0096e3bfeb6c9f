package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/fitness-backend/internal/config"
)

// Transport открывает аутентифицированные STARTTLS-соединения
// с SMTP-сервером из конфигурации.
type Transport struct {
	host string
	port string
	user string
	pass string
}

// NewTransport создает Transport из SMTP-секции конфигурации.
func NewTransport(cfg config.SMTPConnection) *Transport {
	return &Transport{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
	}
}

// GetSMTPUser возвращает адрес отправителя.
func (t *Transport) GetSMTPUser() string {
	return t.user
}

// Connect устанавливает соединение, поднимает TLS и проходит аутентификацию.
// Сервер без поддержки STARTTLS отклоняется: пароль по открытому каналу не уходит.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"

	conn, err := net.Dial("tcp", net.JoinHostPort(t.host, t.port))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := t.authenticate(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &clientAdapter{c: client}, nil
}

func (t *Transport) authenticate(client *smtp.Client) error {
	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("server does not support STARTTLS")
	}
	tlsConfig := &tls.Config{
		ServerName: t.host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	auth := smtp.PlainAuth("", t.user, t.pass, t.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// clientAdapter приводит *smtp.Client к интерфейсу Client.
type clientAdapter struct {
	c *smtp.Client
}

func (a *clientAdapter) Mail(from string) error        { return a.c.Mail(from) }
func (a *clientAdapter) Rcpt(to string) error          { return a.c.Rcpt(to) }
func (a *clientAdapter) Data() (io.WriteCloser, error) { return a.c.Data() }
func (a *clientAdapter) Quit() error                   { return a.c.Quit() }
func (a *clientAdapter) Close() error                  { return a.c.Close() }
