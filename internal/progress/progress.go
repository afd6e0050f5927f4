// Package progress renders a per-file progress readout on stderr so long
// scans stay visibly alive without polluting stdout reports.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter drives one progress readout for the duration of a phase.
// Tick is safe to call from analyzer workers.
type Reporter struct {
	bar *progressbar.ProgressBar
}

// Bar starts a counted bar for a phase with a known file total.
func Bar(phase string, total int) *Reporter {
	return &Reporter{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(phase),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Spinner starts an indeterminate readout for a phase with no known total.
func Spinner(phase string) *Reporter {
	return &Reporter{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(phase),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Tick advances the readout by one completed file.
func (r *Reporter) Tick() {
	_ = r.bar.Add(1)
}

// Done erases the readout, leaving stderr clean for the report.
func (r *Reporter) Done() {
	_ = r.bar.Finish()
	_ = r.bar.Clear()
}

// Fail erases the readout and notes what stopped the phase.
func (r *Reporter) Fail(err error) {
	_ = r.bar.Finish()
	_ = r.bar.Clear()
	fmt.Fprintf(os.Stderr, "aborted: %v\n", err)
}
