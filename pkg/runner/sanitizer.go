package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds a visitor message in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "ARCTY_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput prepares a message body (HTTP, MCP, NDJSON) for matching.
// Oversized and malformed input is rejected, never truncated. Terminal
// escape sequences and control characters are removed; line breaks and
// tabs stay, since multiline patterns may rely on them.
func SanitizeInput(input string) (string, error) {
	if err := checkInput(input); err != nil {
		return "", err
	}
	return stripControls(input, true), nil
}

// SanitizeLine prepares one line typed in the chat. It applies the same
// checks as SanitizeInput, turns tabs into spaces, drops every other
// control character and trims the surrounding space.
func SanitizeLine(line string) (string, error) {
	if err := checkInput(line); err != nil {
		return "", err
	}
	return strings.TrimSpace(stripControls(line, false)), nil
}

func checkInput(input string) error {
	if limit := maxInputSize(); len(input) > limit {
		return fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}
	return nil
}

// stripControls removes CSI sequences (ESC '[' params final) as a whole so
// colour codes pasted from a terminal do not leak into the match.
func stripControls(input string, multiline bool) string {
	if !needsCleaning(input, multiline) {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case r == '\x1b':
			i += escapeLen(input[i:])
			continue
		case r == '\t' && !multiline:
			b.WriteByte(' ')
		case unicode.IsControl(r) && !(multiline && keepsLayout(r)):
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func needsCleaning(input string, multiline bool) bool {
	for _, r := range input {
		if unicode.IsControl(r) && !(multiline && keepsLayout(r)) {
			return true
		}
	}
	return false
}

func keepsLayout(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// escapeLen returns the length of the escape sequence at the start of s.
// A lone ESC counts as one byte.
func escapeLen(s string) int {
	if len(s) < 2 || s[1] != '[' {
		return 1
	}
	for i := 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7e {
			return i + 1
		}
	}
	return len(s)
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
