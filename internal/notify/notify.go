// Package notify surfaces due scheduled posts on the terminal.
package notify

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matthewjhunter/copysmith/internal/storage"
)

type Notifier struct {
	enabled bool
	out     io.Writer
}

func NewNotifier(enabled bool, out io.Writer) *Notifier {
	return &Notifier{enabled: enabled, out: out}
}

// NotifyDuePosts prints a reminder block for every post whose scheduled time
// has passed.
func (n *Notifier) NotifyDuePosts(posts []storage.ScheduledPost, now time.Time) error {
	if !n.enabled || len(posts) == 0 {
		return nil
	}

	for _, p := range posts {
		overdue := now.Sub(p.ScheduledAt).Round(time.Minute)
		msg := fmt.Sprintf("⏰ Post due (%s overdue)\n\nTitle: %s\nPlatform: %s\n\n%s",
			overdue, p.Title, p.Platform, truncate(p.Content, 200))
		if err := n.send(msg); err != nil {
			return fmt.Errorf("send reminder: %w", err)
		}
	}
	return nil
}

func (n *Notifier) send(message string) error {
	fmt.Fprintln(n.out, "╔════════════════════════════════════════════════════════════════════════")
	fmt.Fprintln(n.out, "║ 🔔 SCHEDULED POST REMINDER")
	fmt.Fprintln(n.out, "╠════════════════════════════════════════════════════════════════════════")
	fmt.Fprintln(n.out, message)
	fmt.Fprintln(n.out, "╚════════════════════════════════════════════════════════════════════════")
	return nil
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
