package keystore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/chainswap/internal/util/command"
	"golang.org/x/term"
)

const (
	fileFlag     = "file"
	generateFlag = "generate"
	revealFlag   = "reveal"
)

var errNoKeystoreFile = errors.New("no keystore file given, use --file or KEYS_KEYSTORE_FILE")

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newCreate(),
		newShow(),
	)
}

// prompt reads one line from stdin. Input is not echoed when stdin is a terminal.
func prompt(cmd *cobra.Command, label string, secret bool) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label+": ")

	fd := int(os.Stdin.Fd())
	if secret && term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", errors.Wrap(err, "failed to read input")
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read input")
	}

	return strings.TrimSpace(line), nil
}
