package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/sift/pkg/sift/types"
	"github.com/schollz/progressbar/v3"
)

// walkProgress shows a spinner on stderr while a walk runs.
type walkProgress struct {
	bar *progressbar.ProgressBar
}

// newWalkProgress returns nil in quiet mode or when stderr is not a terminal.
func newWalkProgress(root string) *walkProgress {
	if getQuiet() || !isTerminal(os.Stderr) {
		return nil
	}
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription("Scanning "+root),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &walkProgress{bar: bar}
}

// Update is a traverse.Options.OnProgress callback.
func (p *walkProgress) Update(pr types.Progress) {
	if p == nil {
		return
	}
	stage := "discovering"
	if pr.WalkComplete {
		stage = "hashing"
	}
	p.bar.Describe(fmt.Sprintf("%s: %d dirs, %d/%d files", stage, pr.DirsScanned, pr.FilesHashed, pr.FilesScanned))
	_ = p.bar.Set64(pr.BytesHashed)
}

// Finish clears the spinner.
func (p *walkProgress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprint(os.Stderr, "\r")
}
