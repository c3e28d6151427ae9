package telegram

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// termAuth asks for login details on the terminal.
type termAuth struct{}

func prompt(label string) string {
	fmt.Print(label)
	text, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(text)
}

func (termAuth) Phone(_ context.Context) (string, error) {
	return prompt("📞 Enter Phone Number: "), nil
}

func (termAuth) Password(_ context.Context) (string, error) {
	return prompt("🔐 Enter 2FA Password: "), nil
}

func (termAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return prompt("📩 Enter Code: "), nil
}

func (termAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{
		FirstName: prompt("👤 Enter First Name: "),
		LastName:  prompt("👤 Enter Last Name: "),
	}, nil
}

func (termAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}
