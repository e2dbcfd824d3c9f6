package batch

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// newProgressBar draws per-source progress on w. A nil w gives a silent
// bar so callers never need to check.
func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Normalizing"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

// describe refreshes the bar label with the clip count so far.
func describe(bar *progressbar.ProgressBar, s Stats) {
	bar.Describe(fmt.Sprintf("Normalizing (%d clips, %d failed)", s.Segments, s.Failed))
}
