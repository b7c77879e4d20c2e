// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"texpub-cli/internal/issue"
	"texpub-cli/internal/version"
)

var (
	versionsFamily string
	versionsAsset  string
	versionsTask   string
	versionsName   string

	versionsCmd = &cobra.Command{
		Use:   "versions",
		Short: "Query version numbers of published artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	versionsNextCmd = &cobra.Command{
		Use:   "next",
		Short: "Show the version the next publish of an identity would get",
		Long: `Show the version the next publish of an identity would get.

The publish area is scanned and existing paths matched against the
identity's family templates; the result is one greater than the highest
version found. The filesystem is the source of truth, so the answer
reflects exactly what a publish running now would allocate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionsNext(cmd.Context())
		},
	}

	versionsRegisteredCmd = &cobra.Command{
		Use:   "registered",
		Short: "Show the highest registered version of an identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionsRegistered(cmd.Context())
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{versionsNextCmd, versionsRegisteredCmd} {
		c.Flags().StringVar(&versionsFamily, "family", string(version.FamilyTexture), "identity family (project, texture, texture_set)")
		c.Flags().StringVar(&versionsAsset, "asset", "", "asset name (required)")
		c.Flags().StringVar(&versionsTask, "task", "", "task name (required)")
		c.Flags().StringVar(&versionsName, "name", "", "artifact name: texture set or work file name (required)")
		_ = c.MarkFlagRequired("asset")
		_ = c.MarkFlagRequired("task")
		_ = c.MarkFlagRequired("name")
	}

	versionsCmd.AddCommand(versionsNextCmd)
	versionsCmd.AddCommand(versionsRegisteredCmd)
}

func versionsIdentity() (version.Identity, error) {
	id := version.Identity{
		Asset:  versionsAsset,
		Task:   versionsTask,
		Name:   versionsName,
		Family: version.Family(versionsFamily),
	}
	if !id.Family.IsValid() {
		return version.Identity{}, issue.NewErrorContext().
			WithOperation("parse identity").
			WithResource(versionsFamily).
			WithSuggestion("Use one of: project, texture, texture_set").
			BuildError()
	}
	return id, nil
}

func runVersionsNext(ctx context.Context) error {
	svc, err := buildServices(ctx)
	if err != nil {
		return err
	}
	id, err := versionsIdentity()
	if err != nil {
		return err
	}

	next, err := svc.newResolver().NextVersion(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", CmdStyle.Render(id.String()), SuccessStyle.Render(fmt.Sprintf("v%03d", next)))
	return nil
}

func runVersionsRegistered(ctx context.Context) error {
	svc, err := buildServices(ctx)
	if err != nil {
		return err
	}
	id, err := versionsIdentity()
	if err != nil {
		return err
	}

	highest, found, err := svc.records.QueryMaxVersion(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("%s %s\n", CmdStyle.Render(id.String()), SubtitleStyle.Render("(nothing registered)"))
		return nil
	}
	fmt.Printf("%s %s\n", CmdStyle.Render(id.String()), SuccessStyle.Render(fmt.Sprintf("v%03d", highest)))
	return nil
}
