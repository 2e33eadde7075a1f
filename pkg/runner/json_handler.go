package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/arcty/pkg/domain"
)

// JSONHandler implements IOHandler for JSON Lines communication.
// Every reply is written as one JSON object per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// systemLine is the shape of SystemOutput lines.
type systemLine struct {
	System string `json:"system"`
}

// inputLine is the object form accepted by Input.
type inputLine struct {
	Input *string `json:"input"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the reply as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, reply *domain.Reply) error {
	if reply == nil {
		return nil
	}
	return h.Encoder.Encode(reply)
}

// Input reads one line. A line may be a JSON string ("hello"), an object
// ({"input": "hello"}) or plain text. Empty lines are skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return "", err
			}
			continue
		}

		return SanitizeInput(decodeInput(text))
	}
}

func decodeInput(text string) string {
	var s string
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return s
	}
	var obj inputLine
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.Input != nil {
		return *obj.Input
	}
	return text
}

// SystemOutput emits {"system": msg}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(systemLine{System: msg})
}
