package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// Login runs the interactive sign-in and stores the session file
func (c *Client) Login(ctx context.Context, phone string, in io.Reader, out io.Writer) error {
	storage, err := c.storage(ctx)
	if err != nil {
		return err
	}

	client := telegram.NewClient(c.appID, c.appHash, telegram.Options{SessionStorage: storage})
	prompt := &terminalAuth{phone: phone, in: bufio.NewReader(in), out: out}

	return client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(prompt, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("failed to authorize: %w", err)
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current user: %w", err)
		}

		c.logger.Info().
			Int64("user_id", self.ID).
			Str("session_file", c.sessionPath).
			Msg("Logged in")
		fmt.Fprintf(out, "Вход выполнен: %s (id %d)\n", self.FirstName, self.ID)
		return nil
	})
}

// terminalAuth asks for the login code and 2FA password on a terminal
type terminalAuth struct {
	phone string
	in    *bufio.Reader
	out   io.Writer
}

var _ auth.UserAuthenticator = (*terminalAuth)(nil)

func (a *terminalAuth) Phone(ctx context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	return a.ask("Номер телефона: ")
}

func (a *terminalAuth) Password(ctx context.Context) (string, error) {
	return a.ask("Пароль двухфакторной аутентификации: ")
}

func (a *terminalAuth) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	return a.ask("Код из Telegram: ")
}

func (a *terminalAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a *terminalAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up is not supported, register the account in a Telegram app first")
}

func (a *terminalAuth) ask(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
