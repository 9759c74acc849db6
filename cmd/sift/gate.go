package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/sift/pkg/sift/category"
	"github.com/manifoldco/promptui"
)

// maxPreview bounds the paths listed before a confirmation prompt.
const maxPreview = 10

// newGate returns the approval gate for a category run.
func newGate(yes, dryRun bool) category.Gate {
	switch {
	case dryRun:
		return category.DenyAll
	case yes:
		return category.ApproveAll
	case !isTerminal(os.Stdin):
		printInfo("Warning: stdin is not a terminal; pass --yes to apply changes")
		return category.DenyAll
	}
	return category.GateFunc(confirmPlan)
}

// confirmPlan shows a plan on stderr and asks for a yes/no answer.
func confirmPlan(plan category.Plan) (bool, error) {
	if len(plan.Paths) == 0 {
		printInfo("%q matched no indexed files", plan.Rule.Keyword)
		return false, nil
	}

	fmt.Fprintln(os.Stderr, describePlan(plan))

	verb := "Move"
	if plan.Mode == category.ModeDelete {
		verb = "Delete"
	}
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s %d files", verb, len(plan.Paths)),
		IsConfirm: true,
		Default:   "n",
		Stdout:    os.Stderr,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, fmt.Errorf("prompt interrupted: %w", err)
		}
		return false, err
	}
	return true, nil
}

// describePlan renders the plan summary shown before the prompt.
func describePlan(plan category.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%q matched %d files (%s)\n",
		plan.Rule.Keyword, len(plan.Paths), strings.Join(plan.Types, ", "))
	if plan.Target != "" {
		fmt.Fprintf(&b, "Destination: %s\n", plan.Target)
	}
	for i, p := range plan.Paths {
		if i == maxPreview {
			fmt.Fprintf(&b, "  ... and %d more\n", len(plan.Paths)-maxPreview)
			break
		}
		fmt.Fprintf(&b, "  %s\n", p)
	}
	return b.String()
}
