package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// ConsoleNotifier prints notices to a terminal stream. Rollback notices
// arrive from background goroutines, so writes are serialized.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ secondary.Notifier = (*ConsoleNotifier)(nil)

// NewConsoleNotifier creates a notifier writing to out (usually stderr).
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Notify prints the notice, followed by its cause when there is one.
func (n *ConsoleNotifier) Notify(_ context.Context, notice secondary.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch notice.Level {
	case secondary.NoticeError:
		fmt.Fprintf(n.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), notice.Message)
	default:
		fmt.Fprintf(n.out, "%s %s\n", color.New(color.FgCyan).Sprint("ℹ"), notice.Message)
	}
	if notice.Err != nil {
		fmt.Fprintf(n.out, "  cause: %v\n", notice.Err)
	}
}
