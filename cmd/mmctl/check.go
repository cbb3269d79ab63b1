package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <heapfile>",
		Short: "Check a heap image for consistency",
		Long: `Check walks every block of a heap image and its free list and reports
each violation found: mismatched tags, uncoalesced neighbors, broken links,
free blocks missing from the list, and byte accounting errors.

Example:
  mmctl check /tmp/heap.img
  mmctl check --json /tmp/heap.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
}

// checkResult is the JSON shape of a check run.
type checkResult struct {
	Path       string      `json:"path"`
	Size       int         `json:"size"`
	Valid      bool        `json:"valid"`
	Violations []violation `json:"violations,omitempty"`
}

type violation struct {
	Type    string         `json:"type"`
	Offset  int            `json:"offset"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func runCheck(args []string) error {
	path := args[0]
	printVerbose("Reading heap image: %s\n", path)

	im, err := mmfile.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read heap file: %w", err)
	}
	defer im.Close()
	data := im.Data

	res := checkResult{Path: path, Size: len(data), Valid: true}
	if err := verify.All(data); err != nil {
		res.Valid = false
		res.Violations = violations(err)
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.Valid {
		printInfo("%s: ok (%d bytes)\n", path, len(data))
	} else {
		printInfo("%s: %d violation(s)\n", path, len(res.Violations))
		for _, v := range res.Violations {
			printInfo("  [%s] @%d: %s\n", v.Type, v.Offset, v.Message)
		}
	}

	if !res.Valid {
		return fmt.Errorf("heap check failed: %d violation(s)", len(res.Violations))
	}
	return nil
}

// violations flattens a joined verify error.
func violations(err error) []violation {
	var errs []error
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]violation, 0, len(errs))
	for _, e := range errs {
		var ve *verify.ValidationError
		if errors.As(e, &ve) {
			out = append(out, violation{Type: ve.Type, Offset: ve.Offset, Message: ve.Message, Details: ve.Details})
			continue
		}
		out = append(out, violation{Type: "Error", Message: e.Error()})
	}
	return out
}
