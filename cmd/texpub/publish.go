// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"texpub-cli/internal/export"
	"texpub-cli/internal/issue"
	"texpub-cli/internal/publish"
	"texpub-cli/internal/texture"
	"texpub-cli/internal/version"
	"texpub-cli/pkg/types"
)

var (
	publishAsset       string
	publishTask        string
	publishPreset      string
	publishSet         string
	publishDescription string

	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Publish texture sets or work files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	publishTexturesCmd = &cobra.Command{
		Use:   "textures",
		Short: "Export, validate and publish the texture sets of an asset task",
		Long: `Export, validate and publish the texture sets of an asset task.

The configured export hook is run with the requested preset, its output
scanned and grouped into texture sets, and each set copied into a fresh
version of the publish area. Every published map and set is registered.

Nothing is copied if any exported filename does not conform to the
expected '<set>_<map>_<colorspace>[.<udim>].<ext>' pattern.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublishTextures(cmd.Context())
		},
	}

	publishProjectCmd = &cobra.Command{
		Use:   "project <work-file>",
		Short: "Publish a work file into the publish area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublishProject(cmd.Context(), args[0])
		},
	}
)

func init() {
	publishTexturesCmd.Flags().StringVar(&publishAsset, "asset", "", "asset name (required)")
	publishTexturesCmd.Flags().StringVar(&publishTask, "task", "", "task name (required)")
	publishTexturesCmd.Flags().StringVar(&publishPreset, "preset", "", "export preset name (required)")
	publishTexturesCmd.Flags().StringVar(&publishSet, "set", "", "publish only this texture set")
	publishTexturesCmd.Flags().StringVar(&publishDescription, "description", "", "description attached to created records")
	_ = publishTexturesCmd.MarkFlagRequired("asset")
	_ = publishTexturesCmd.MarkFlagRequired("task")
	_ = publishTexturesCmd.MarkFlagRequired("preset")

	publishProjectCmd.Flags().StringVar(&publishDescription, "description", "", "description attached to the created record")

	publishCmd.AddCommand(publishTexturesCmd)
	publishCmd.AddCommand(publishProjectCmd)
}

func runPublishTextures(ctx context.Context) error {
	svc, err := buildServices(ctx)
	if err != nil {
		return err
	}

	results, err := svc.publisher.PublishTextures(ctx, publish.TextureRequest{
		Asset:       publishAsset,
		Task:        publishTask,
		Preset:      publishPreset,
		SetFilter:   publishSet,
		Description: publishDescription,
	})
	if err != nil {
		renderPublishIssue(svc, err)
		return err
	}

	for _, res := range results {
		fmt.Printf("%s %s %s\n",
			SuccessStyle.Render("published"),
			CmdStyle.Render(res.Name),
			SubtitleStyle.Render(fmt.Sprintf("v%03d (%d files)", res.Version, len(res.Files))))
		if verbose {
			for _, f := range res.Files {
				fmt.Println(VerboseStyle.Render("  " + f.String()))
			}
		}
	}
	return nil
}

func runPublishProject(ctx context.Context, workFile string) error {
	svc, err := buildServices(ctx)
	if err != nil {
		return err
	}

	res, err := svc.publisher.PublishProject(ctx, publish.ProjectRequest{
		WorkFile:    types.FilesystemPath(workFile),
		Description: publishDescription,
	})
	if err != nil {
		renderPublishIssue(svc, err)
		return err
	}

	fmt.Printf("%s %s %s\n",
		SuccessStyle.Render("published"),
		CmdStyle.Render(res.Name),
		SubtitleStyle.Render(fmt.Sprintf("v%03d -> %s", res.Version, res.Path)))
	return nil
}

// classifyPublishError maps a publish failure to the issue explaining it.
func classifyPublishError(err error) (issue.Id, bool) {
	var inconsistent *texture.InconsistentTextureSetError
	var verr *publish.ValidationError

	switch {
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, true
	case errors.As(err, &inconsistent):
		return issue.InconsistentTextureSetId, true
	case errors.Is(err, export.ErrExport):
		return issue.ExportHookFailedId, true
	case errors.Is(err, version.ErrVersionQuery):
		return issue.VersionQueryFailedId, true
	case errors.Is(err, publish.ErrRegistration):
		return issue.RegistrationFailedId, true
	case errors.Is(err, publish.ErrCommit):
		return issue.PublishCommitFailedId, true
	case errors.As(err, &verr):
		switch {
		case len(verr.Diagnostics) > 0:
			return issue.FilenameMismatchId, true
		case verr.Reason == "export produced no files":
			return issue.EmptyExportId, true
		default:
			return issue.InvalidPresetId, true
		}
	}
	return 0, false
}

// renderPublishIssue prints the rendered issue for a publish failure, when
// one maps to it.
func renderPublishIssue(svc *services, err error) {
	id, ok := classifyPublishError(err)
	if !ok {
		return
	}
	scheme := "auto"
	if svc != nil && svc.cfg != nil && svc.cfg.UI.ColorScheme != "" {
		scheme = string(svc.cfg.UI.ColorScheme)
	}
	rendered, renderErr := issue.Get(id).Render(scheme)
	if renderErr != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}
