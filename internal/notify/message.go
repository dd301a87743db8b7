package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/deltagraph/internal/snapshot"
)

const maxListedErrors = 3

func FormatSuccessMessage(result *snapshot.BatchResult, duration time.Duration) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Capture: %s\n", result.CaptureID)
	fmt.Fprintf(&sb, "Symbols: %d\n", result.Total)
	fmt.Fprintf(&sb, "Success: %d\n", result.Success)
	fmt.Fprintf(&sb, "Bytes: %d\n", result.Bytes)
	fmt.Fprintf(&sb, "Duration: %s", duration.Round(time.Second))

	return sb.String()
}

// FormatFailureMessage lists the first few per-symbol errors after the totals.
func FormatFailureMessage(result *snapshot.BatchResult, duration time.Duration, err error) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Capture: %s\n", result.CaptureID)
	fmt.Fprintf(&sb, "Symbols: %d\n", result.Total)
	fmt.Fprintf(&sb, "Success: %d\n", result.Success)
	fmt.Fprintf(&sb, "Failed: %d\n", result.Failed)
	fmt.Fprintf(&sb, "Duration: %s", duration.Round(time.Second))

	if err != nil {
		fmt.Fprintf(&sb, "\n\nError: %v", err)
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\n\nErrors:\n")
		limit := min(len(result.Errors), maxListedErrors)
		for i := 0; i < limit; i++ {
			fmt.Fprintf(&sb, "- %s\n", result.Errors[i])
		}
		if len(result.Errors) > maxListedErrors {
			fmt.Fprintf(&sb, "... and %d more errors", len(result.Errors)-maxListedErrors)
		}
	}

	return sb.String()
}
