package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"contest-assist/lib/cookiestore"
	"contest-assist/lib/scrapers/atcoder"
	"contest-assist/lib/session"

	"golang.org/x/term"
)

// newCredentials prefers ATCODER_USERNAME/ATCODER_PASSWORD so scripts
// can run non-interactively; otherwise it prompts on the terminal.
func newCredentials() atcoder.CredentialProvider {
	username := os.Getenv("ATCODER_USERNAME")
	password := os.Getenv("ATCODER_PASSWORD")
	if username != "" && password != "" {
		return atcoder.StaticCredentials{Username: username, Password: password}
	}
	return atcoder.PromptFunc(promptCredentials)
}

func promptCredentials(_ context.Context) (string, string, error) {
	fmt.Fprint(os.Stderr, "username: ")
	username, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", "", err
	}
	fmt.Fprint(os.Stderr, "password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(username), string(password), nil
}

// newClient opens the durable cookie session and wires the scraping
// client. The returned closer releases the cookie-store lock.
func newClient(cfg Config) (*atcoder.Client, func()) {
	store, err := cookiestore.Open(expandHome(cfg.CookieFile))
	if err != nil {
		fatal("failed to open cookie store", err)
	}
	sess, err := session.New(session.Options{
		BaseURL:   atcoder.BaseURL,
		Store:     store,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout(),
	})
	if err != nil {
		store.Close()
		fatal("failed to create session", err)
	}

	client := atcoder.NewClient(atcoder.ClientOptions{
		Session:     sess,
		Credentials: newCredentials(),
	})
	return client, func() {
		if err := sess.Close(); err != nil {
			slog.Warn("failed to close session", "err", err)
		}
	}
}
