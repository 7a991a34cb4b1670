// upload.go implements "ninja upload", the resume analysis workflow.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/profile"
	"github.com/applyninja/ninja/internal/ui"
	"github.com/applyninja/ninja/internal/upload"
)

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <resume>",
		Short: "Upload a resume for AI analysis",
		Long: `Send a resume to the server for analysis and store the extracted
profile. If a payment proof was submitted earlier, the Pro plan is
activated once the analysis succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return runUpload(cmd, a, args[0])
			})
		},
	}
}

func runUpload(cmd *cobra.Command, a *app, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening resume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	progress := ui.NewProgressDisplay(a.out, "Resume Upload")
	file := &flow.File{Name: filepath.Base(path), Size: info.Size(), Content: f}

	res, err := a.uploader(progress).Run(cmd.Context(), file)
	if errors.Is(err, upload.ErrNoFile) {
		return errors.New("please choose a resume file to upload")
	}
	if err != nil {
		return err
	}

	printProfileSummary(a, res.Profile)
	switch {
	case res.Promoted:
		fmt.Fprintln(a.out, "Pro plan activated.")
	case res.PromotionErr != nil:
		fmt.Fprintf(a.out, "Pro plan activation failed: %v\n", res.PromotionErr)
		fmt.Fprintln(a.out, "Your payment proof is kept; retry with: ninja pay verify")
	}
	return nil
}

func printProfileSummary(a *app, rec *profile.Record) {
	if rec == nil {
		return
	}
	if name := rec.Name(); name != "" {
		fmt.Fprintf(a.out, "Name:   %s\n", name)
	}
	if role := rec.JobRole(); role != "" {
		fmt.Fprintf(a.out, "Role:   %s\n", role)
	}
	if skills := rec.Skills(); len(skills) > 0 {
		fmt.Fprintf(a.out, "Skills: %s\n", profile.FormatSkills(skills))
	}
	plan := "Free"
	if rec.IsPremium() {
		plan = "Pro"
	}
	fmt.Fprintf(a.out, "Plan:   %s\n", plan)
}
