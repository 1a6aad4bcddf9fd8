// Package repl runs the interactive prompt over an interp.Session.
package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"rill/internal/history"
	"rill/internal/interp"
	"rill/internal/lexer"
	"rill/internal/token"
	"strings"

	"github.com/peterh/liner"
)

const (
	PROMPT       = ">> "
	CONTINUATION = ".. "

	// HistoryLimit caps how many earlier lines are loaded into the prompt.
	HistoryLimit = 500
)

// LineReader is the part of liner.State the loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type Repl struct {
	Prompt  string
	Reader  LineReader
	Session *interp.Session
	History history.Store
	Out     io.Writer
}

// Start runs the prompt on the terminal until end of input.
func Start(opts interp.Options, prompt string, store history.Store, out io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r := &Repl{
		Prompt:  prompt,
		Reader:  ln,
		Session: interp.NewSession(opts),
		History: store,
		Out:     out,
	}
	r.loadHistory()
	return r.Loop()
}

func (r *Repl) loadHistory() {
	if r.History == nil {
		return
	}
	lines, err := r.History.Load(HistoryLimit)
	if err != nil {
		slog.Warn("failed to load history", slog.Any("error", err))
		return
	}
	for _, line := range lines {
		r.Reader.AppendHistory(line)
	}
}

// Loop reads chunks and executes them until the reader reports io.EOF.
// An aborted prompt discards the pending chunk.
func (r *Repl) Loop() error {
	prompt := r.Prompt
	if prompt == "" {
		prompt = PROMPT
	}

	for {
		chunk, err := r.readChunk(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.Out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		r.Session.Execute(chunk)
		r.remember(chunk)
	}
}

// readChunk keeps prompting while the input has unclosed braces.
func (r *Repl) readChunk(prompt string) (string, error) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = CONTINUATION
		}
		line, err := r.Reader.Prompt(p)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if openBraces(b.String()) <= 0 {
			return b.String(), nil
		}
	}
}

func (r *Repl) remember(chunk string) {
	flat := strings.ReplaceAll(chunk, "\n", " ")
	r.Reader.AppendHistory(flat)
	if r.History == nil {
		return
	}
	if err := r.History.Append(flat); err != nil {
		slog.Warn("failed to save history", slog.Any("error", err))
	}
}

func openBraces(src string) int {
	depth := 0
	for _, tok := range lexer.New(src).ScanTokens() {
		switch tok.Type {
		case token.LEFT_BRACE:
			depth++
		case token.RIGHT_BRACE:
			depth--
		}
	}
	return depth
}
