package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// promptPassword reads a password from the command input. A terminal on
// stdin has echo turned off while typing.
func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)

	var (
		raw []byte
		err error
	)
	if stdin, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(stdin) {
		raw, err = readPasswordNoEcho(stdin)
		fmt.Fprintln(cmd.ErrOrStderr())
	} else {
		raw, err = readLine(cmd.InOrStdin())
	}
	if err != nil {
		return "", err
	}

	password := string(raw)
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}

func isTerminal(file *os.File) bool {
	info, err := file.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func readLine(in io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
