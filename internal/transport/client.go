package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/go-mail/smtp"
)

// SMTPDialer opens transports to a single SMTP endpoint using the go-mail
// smtp client.
type SMTPDialer struct {
	Host      string
	Port      int
	Timeout   time.Duration
	TLSConfig *tls.Config // optional; defaults to ServerName=Host
}

// Dial connects and wraps the connection in a Transport. The EHLO, TLS,
// and AUTH steps are driven by the session, not here.
func (d *SMTPDialer) Dial() (Transport, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, d.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	return &smtpTransport{c: c, host: d.Host, tlsConfig: d.TLSConfig}, nil
}

type smtpTransport struct {
	c         *smtp.Client
	host      string
	tlsConfig *tls.Config
}

func (t *smtpTransport) Hello(localName string) error {
	if localName == "" {
		localName = "localhost"
	}
	return t.c.Hello(localName)
}

func (t *smtpTransport) StartTLS(cfg *tls.Config) error {
	if cfg == nil {
		cfg = t.tlsConfig
	}
	if cfg == nil {
		cfg = &tls.Config{ServerName: t.host}
	}
	if ok, _ := t.c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("server %s does not advertise STARTTLS", t.host)
	}
	return t.c.StartTLS(cfg)
}

func (t *smtpTransport) Auth(user, password string) error {
	auth := smtp.PlainAuth("", user, password, t.host)
	if ok, mechs := t.c.Extension("AUTH"); ok {
		if !strings.Contains(mechs, "PLAIN") && strings.Contains(mechs, "LOGIN") {
			auth = smtp.LoginAuth(user, password, t.host)
		}
	}
	if err := t.c.Auth(auth); err != nil {
		return &AuthError{Err: err}
	}
	return nil
}

func (t *smtpTransport) SendMail(from string, recipients []string, msg []byte) error {
	if err := t.c.Mail(from); err != nil {
		return classify(err)
	}
	for _, rcpt := range recipients {
		if err := t.c.Rcpt(rcpt); err != nil {
			return classify(err)
		}
	}
	w, err := t.c.Data()
	if err != nil {
		return classify(err)
	}
	if _, err := w.Write(msg); err != nil {
		return classify(err)
	}
	if err := w.Close(); err != nil {
		return classify(err)
	}
	return nil
}

func (t *smtpTransport) Quit() error {
	return t.c.Quit()
}

// classify maps an SMTP command failure onto the send error taxonomy.
// Protocol replies refusing the message are permanent; 421 (service
// closing) and any connection-level failure are transient.
func classify(err error) error {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		if proto.Code == 421 {
			return &TransientError{Err: err}
		}
		return &PermanentError{Code: proto.Code, Err: err}
	}
	return &TransientError{Err: err}
}
