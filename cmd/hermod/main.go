package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dukerupert/hermod/internal"
	"github.com/dukerupert/hermod/internal/address"
	"github.com/dukerupert/hermod/internal/content"
	"github.com/dukerupert/hermod/internal/secret"
	"github.com/dukerupert/hermod/internal/session"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

func run() (bool, error) {
	to := flag.StringSliceP("to", "t", nil, "recipient address (repeatable)")
	subject := flag.StringSliceP("subject", "s", nil, "subject text (parts are joined with spaces)")
	contents := flag.StringSliceP("contents", "c", nil, "content item: file path, URL, or literal text (repeatable)")
	user := flag.StringP("user", "u", "", "account to send as")
	password := flag.StringP("password", "p", "", "account password (prefer the system keyring)")
	flag.Parse()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return false, fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	sess, err := session.Login(session.Options{
		Host:         cfg.SMTP.Host,
		Port:         int(cfg.SMTP.Port),
		StartTLS:     cfg.SMTP.StartTLS,
		User:         firstNonEmpty(*user, cfg.SMTP.User),
		DisplayName:  cfg.SMTP.DisplayName,
		Password:     firstNonEmpty(*password, cfg.SMTP.Password),
		IdentityFile: cfg.IdentityFile,
		Secrets:      secret.NewKeyringStore(cfg.CredentialDir),
		Prompt:       promptPassword,
		Logger:       logger,
	})
	if err != nil {
		return false, fmt.Errorf("login failed: %w", err)
	}
	defer sess.Close()

	result, err := sess.Send(session.Request{
		To:       toField(*to),
		Subject:  *subject,
		Contents: toItems(*contents),
	})
	if err != nil {
		return false, fmt.Errorf("send failed: %w", err)
	}
	return result.OK(), nil
}

func toField(addrs []string) address.Field {
	switch len(addrs) {
	case 0:
		return address.Field{}
	case 1:
		return address.Single(addrs[0])
	default:
		return address.List(addrs...)
	}
}

func toItems(sources []string) []content.Item {
	items := make([]content.Item, 0, len(sources))
	for _, src := range sources {
		items = append(items, content.Item{Source: src})
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// promptPassword reads a password from the terminal and asks whether to
// store it in the keyring for next time.
func promptPassword(user string) (string, bool, error) {
	fmt.Fprintf(os.Stderr, "Password for <%s>: ", user)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", false, fmt.Errorf("reading password: %w", err)
	}
	for {
		fmt.Fprint(os.Stderr, "Save username and password in keyring? [y/n]: ")
		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			return string(pw), true, nil
		case "n":
			return string(pw), false, nil
		}
	}
}

func main() {
	ok, err := run()
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		os.Exit(1)
	}
}
