// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"texpub-cli/internal/issue"
	"texpub-cli/pkg/types"
)

var (
	templateFields []string

	templateCmd = &cobra.Command{
		Use:   "template",
		Short: "Inspect and exercise path templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	templateListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the loaded path templates and their keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateList(cmd.Context())
		},
	}

	templateResolveCmd = &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a template into a concrete path",
		Long: `Resolve a template into a concrete path.

Field values are passed with repeated -f key=value flags. Integer keys
accept plain numbers and are zero-padded per the key's format:

  texpub template resolve texture_publish \
    -f Asset=ship -f task_name=surfacing -f version=3 \
    -f texture_set=hull -f texture_map=BaseColor \
    -f colorspace=sRGB -f extension=png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateResolve(cmd.Context(), args[0])
		},
	}

	templateExtractCmd = &cobra.Command{
		Use:   "extract <name> <path>",
		Short: "Extract typed fields from a path using a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateExtract(cmd.Context(), args[0], args[1])
		},
	}
)

func init() {
	templateResolveCmd.Flags().StringArrayVarP(&templateFields, "field", "f", nil, "field value as key=value (repeatable)")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateResolveCmd)
	templateCmd.AddCommand(templateExtractCmd)
}

func runTemplateList(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	reg, err := loadTemplates(cfg)
	if err != nil {
		return err
	}

	names := reg.TemplateNames()
	sort.Strings(names)

	fmt.Println(TitleStyle.Render("Templates") + SubtitleStyle.Render(fmt.Sprintf(" (%s)", cfg.TemplatesFile)))
	for _, name := range names {
		fmt.Printf("  %s\n", CmdStyle.Render(name))
	}
	return nil
}

func runTemplateResolve(ctx context.Context, name string) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	reg, err := loadTemplates(cfg)
	if err != nil {
		return err
	}

	fields, err := parseFieldFlags(templateFields)
	if err != nil {
		return err
	}

	path, err := reg.Resolve(name, fields)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("resolve template").
			WithResource(name).
			WithSuggestion("Run 'texpub template list' to see each template's keys").
			Wrap(err).
			BuildError()
	}

	fmt.Println(path)
	return nil
}

func runTemplateExtract(ctx context.Context, name, path string) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	reg, err := loadTemplates(cfg)
	if err != nil {
		return err
	}

	fields, err := reg.Extract(name, types.FilesystemPath(path))
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("extract fields").
			WithResource(path).
			WithSuggestion("The path must match the template exactly, segment by segment").
			Wrap(err).
			BuildError()
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %v\n", CmdStyle.Render(k), fields[k])
	}
	return nil
}

// parseFieldFlags converts repeated key=value flags into template fields.
// Values that parse as non-negative integers are passed as ints so that
// integer keys accept plain numbers.
func parseFieldFlags(flags []string) (map[string]any, error) {
	fields := make(map[string]any, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", f)
		}
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			fields[key] = n
			continue
		}
		fields[key] = value
	}
	return fields, nil
}
