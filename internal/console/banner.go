package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

const bannerWidth = 72

func Banner(w io.Writer, model, sessionID string) {
	rule := color.CyanString(strings.Repeat("=", bannerWidth))
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, color.YellowString("%*s", (bannerWidth+14)/2, "CLI CHAT BOT"))
	fmt.Fprintln(w, rule)
	for _, line := range []string{
		"Interactive chat with " + model,
		"Rate the conversation any time, e.g. \"I'd rate this 4/5\"",
		"Say goodbye when you are done",
	} {
		fmt.Fprintln(w, color.GreenString("   • %s", line))
	}
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "session %s\n", sessionID)
}

// Troubleshoot prints hints for a failed run, picked by error category.
func Troubleshoot(w io.Writer, err error, debug bool) {
	fmt.Fprintf(w, "\n%s %v\n", color.RedString("Error running the chat application:"), err)

	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, config.ErrMissingCredential), errors.Is(err, config.ErrPlaceholderCredential),
		strings.Contains(msg, "api key"), strings.Contains(msg, "auth"), strings.Contains(msg, "401"):
		fmt.Fprintln(w, "\nThis looks like an API key issue. Please check:")
		fmt.Fprintln(w, "1. Your .env file contains a valid OPENROUTER_API_KEY")
		fmt.Fprintln(w, "2. The key is written without quotes or spaces")
		fmt.Fprintln(w, "3. The key has not expired or been revoked")
	case domain.ClassifyError(err) == domain.KindTransient, strings.Contains(msg, "connection"):
		fmt.Fprintln(w, "\nThis looks like a network issue. Please check:")
		fmt.Fprintln(w, "1. Your internet connection is working")
		fmt.Fprintln(w, "2. Firewall or proxy settings are not blocking the connection")
	default:
		if !debug {
			fmt.Fprintln(w, color.YellowString("\nRun again with --debug for details."))
		}
	}
}
