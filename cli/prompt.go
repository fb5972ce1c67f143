package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompt asks yes/no questions on the terminal.
type prompt struct {
	in        *os.File
	out       io.Writer
	assumeYes bool
}

func newPrompt(assumeYes bool) *prompt {
	return &prompt{in: os.Stdin, out: os.Stdout, assumeYes: assumeYes}
}

// Confirm implements repo.Confirmer. Without a terminal on stdin the
// question is refused rather than answered from piped input.
func (p *prompt) Confirm(question string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !term.IsTerminal(int(p.in.Fd())) {
		return false, fmt.Errorf("cannot ask for confirmation without a terminal; pass --yes to proceed")
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
