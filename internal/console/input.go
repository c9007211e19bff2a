package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// maxLineSecret bounds passphrases read from non-terminal input.
const maxLineSecret = 128

// GetSimpleText prints prompt to w and reads one line from reader. The
// trailing newline is trimmed. A final line without newline is returned
// as is.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// GetPassword prints prompt to w and reads a passphrase from the terminal
// without echo. The caller owns the returned slice and must wipe it.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetPasswordLine reads a passphrase as a plain line for non-terminal
// input such as scripted sessions. The line is read byte by byte into a
// fixed buffer so no copy of the secret is left in a string. Bytes past
// maxLineSecret are dropped.
func GetPasswordLine(reader *bufio.Reader, prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}

	pw := make([]byte, 0, maxLineSecret)
	for {
		c, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(pw) > 0 {
				return pw, nil
			}
			return nil, err
		}
		if c == '\n' {
			break
		}
		if len(pw) == maxLineSecret {
			continue
		}
		pw = append(pw, c)
	}
	if n := len(pw); n > 0 && pw[n-1] == '\r' {
		pw[n-1] = 0
		pw = pw[:n-1]
	}
	return pw, nil
}

// YesNo asks a y/n question. Anything starting with y or Y is yes.
func YesNo(reader *bufio.Reader, prompt string, w io.Writer) bool {
	ans, err := GetSimpleText(reader, prompt+" (y/n): ", w)
	return err == nil && len(ans) > 0 && (ans[0] == 'y' || ans[0] == 'Y')
}
