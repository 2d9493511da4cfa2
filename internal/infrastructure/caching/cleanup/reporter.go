// Package cleanup provides ascii reporter
package cleanup

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	dimCyan     = "\033[38;2;47;91;102m"   // Dim Cyan: #2F5B66
	grey        = "\033[38;2;110;118;129m" // Brighter Grey: #6E7681
	dimGrey     = "\033[38;2;75;82;99m"    // Darker Grey: #4B5263
	success     = "\033[38;2;62;130;144m"  // Dim Cyan: #3E8290
	errorRed    = "\033[38;2;224;108;117m" // One Dark Red: #E06C75
	white       = "\033[38;2;171;178;191m" // One Dark Foreground: #ABB2BF
	whiteBright = "\033[38;2;220;225;230m" // Brighter White
	reset       = "\033[0m"
	bold        = "\033[1m"
)

// Reporter prints human-oriented sweep reports when verbose cleanup is on.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

func (r *Reporter) LogStage(message string, args ...any) {
	formattedMsg := fmt.Sprintf(message, args...)
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, grey, formattedMsg, reset)
}

func (r *Reporter) LogSuccess(message string, args ...any) {
	formattedMsg := fmt.Sprintf(message, args...)
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, white, formattedMsg, reset)
}

func (r *Reporter) LogError(message string, err error) {
	fmt.Fprintf(r.out, "%s%s✖ ERROR: %s%s: %v%s\n", bold, errorRed, grey, message, err, reset)
}

func (r *Reporter) LogInfo(message string, args ...any) {
	formattedMsg := fmt.Sprintf(message, args...)
	fmt.Fprintf(r.out, "%s▶ %s%s%s\n", dimGrey, grey, formattedMsg, reset)
}

// GenerateSweepReport renders the per-sweeper counts of one cleanup pass.
func (r *Reporter) GenerateSweepReport(results []SweepResult) string {
	var report strings.Builder
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 MST")

	report.WriteString(fmt.Sprintf("%s%s▓ %s | %sFund Road cleanup%s\n", bold, dimCyan, timestamp, whiteBright, reset))
	for _, result := range results {
		status := fmt.Sprintf("%d removed, %d remaining", result.Removed, result.Remaining)
		if result.Err != nil {
			status = fmt.Sprintf("%sfailed: %v", errorRed, result.Err)
		}
		report.WriteString(fmt.Sprintf("%s  ├─ %s%-22s%s %s%s\n", dimGrey, white, result.Name, grey, status, reset))
	}
	return report.String()
}
