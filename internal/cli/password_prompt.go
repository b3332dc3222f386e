package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/bitebuddy/internal/services"
)

var ErrPasswordConfirmation = errors.New("passwords do not match")

var errNoTerminal = errors.New("no terminal to silence")

// PromptNewPassword asks for a password twice on in. Echo is disabled when in
// is a terminal; piped input is read as plain lines.
func PromptNewPassword(in *os.File, out io.Writer) (string, error) {
	reader := bufio.NewReader(in)

	password, err := promptHidden(in, reader, out, "New password: ")
	if err != nil {
		return "", err
	}
	confirmation, err := promptHidden(in, reader, out, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirmation {
		return "", ErrPasswordConfirmation
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return "", err
	}
	return password, nil
}

func promptHidden(in *os.File, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if restore, err := disableEcho(in); err == nil {
		defer func() {
			restore()
			fmt.Fprintln(out)
		}()
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
