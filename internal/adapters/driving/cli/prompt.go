package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter reads answers from the command's input. Secrets are read without
// echo when the input is a terminal.
type prompter struct {
	cmd    *cobra.Command
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
}

// line prints label and returns the trimmed answer.
func (p *prompter) line(label string) (string, error) {
	p.cmd.Print(label)
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// secret prints label and returns the answer, hiding it on a terminal.
func (p *prompter) secret(label string) (string, error) {
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.cmd.Print(label)
		b, err := term.ReadPassword(int(f.Fd()))
		p.cmd.Println()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	s, err := p.line(label)
	return s, err
}

// captcha answers a CAPTCHA challenge by showing the image URI.
func (p *prompter) captcha(_ context.Context, imageURI string) string {
	p.cmd.Printf("The server requires a CAPTCHA. Open %s\n", imageURI)
	answer, err := p.line("Characters shown: ")
	if err != nil {
		return ""
	}
	return answer
}
