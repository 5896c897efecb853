package chat

import (
	"context"

	"github.com/GitGautamHub/smart-doctor-cli/internal/api"
)

// ReportPrompt is the fixed text the daily-report shortcut sends. The
// assistant resolves "today" on its side.
const ReportPrompt = "Get my daily report for today."

// RequestDailyReport sends ReportPrompt through the normal exchange path.
// Only doctors get the shortcut; for anyone else, or while an exchange is
// in flight, this is the same silent no-op as a blank Send.
func (c *Controller) RequestDailyReport(ctx context.Context) error {
	c.mu.Lock()
	doctor := c.profile != nil && c.profile.Role == api.RoleDoctor
	c.mu.Unlock()
	if !doctor {
		return nil
	}
	return c.Send(ctx, ReportPrompt)
}
