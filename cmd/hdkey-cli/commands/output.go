package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// walletPassword returns --password or prompts for one. New wallets are
// prompted twice.
func (s *session) walletPassword(confirm bool) (string, error) {
	if s.password != "" {
		return s.password, nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password required (--password)")
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if confirm {
		again, err := readPassword("Confirm password: ")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if string(password) != string(again) {
			return "", fmt.Errorf("passwords do not match")
		}
	}
	return string(password), nil
}
