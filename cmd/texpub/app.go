// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"texpub-cli/internal/config"
	"texpub-cli/internal/export"
	"texpub-cli/internal/issue"
	"texpub-cli/internal/publish"
	"texpub-cli/internal/registry"
	"texpub-cli/internal/tmpl"
	"texpub-cli/internal/version"
)

// services bundles the collaborators a command handler needs, built once per
// invocation from the loaded configuration.
type services struct {
	cfg       *config.Config
	templates *tmpl.Registry
	records   *registry.FileClient
	publisher *publish.Publisher
}

// buildServices loads configuration and wires the template registry, export
// trigger, record registry and publisher together. Missing roots are
// reported as actionable errors instead of failing deep inside a publish.
func buildServices(ctx context.Context) (*services, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	templates, err := loadTemplates(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.WorkRoot == "" || cfg.PublishRoot == "" {
		return nil, issue.NewErrorContext().
			WithOperation("prepare publishing").
			WithSuggestion("Set work_root and publish_root in your config file").
			WithSuggestion("Run 'texpub config show' to inspect the current configuration").
			BuildError()
	}
	if cfg.RegistryRoot == "" {
		return nil, issue.NewErrorContext().
			WithOperation("open the publish registry").
			WithSuggestion("Set registry_root in your config file").
			BuildError()
	}

	records, err := registry.NewFileClient(cfg.RegistryRoot)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open the publish registry").
			WithResource(cfg.RegistryRoot.String()).
			Wrap(err).
			BuildError()
	}

	trigger, err := buildTrigger(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := log.InfoLevel
	if verbose {
		logLevel = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "publish", Level: logLevel})

	publisher, err := publish.New(publish.Options{
		Templates:    templates,
		Exporter:     trigger,
		Records:      records,
		WorkRoot:     cfg.WorkRoot,
		PublishRoot:  cfg.PublishRoot,
		PresetPrefix: string(cfg.PresetPrefix),
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return &services{
		cfg:       cfg,
		templates: templates,
		records:   records,
		publisher: publisher,
	}, nil
}

// loadTemplates loads the path template registry named by the configuration.
func loadTemplates(cfg *config.Config) (*tmpl.Registry, error) {
	reg, err := tmpl.LoadFile(cfg.TemplatesFile)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load templates").
			WithResource(cfg.TemplatesFile.String()).
			WithSuggestion("Run 'texpub config init' to create the default template definitions").
			WithSuggestion("Check the templates file for YAML syntax errors and include cycles").
			Wrap(err).
			BuildError()
	}
	return reg, nil
}

// buildTrigger creates the export trigger from the configured hook script.
// Without a hook the export area is expected to be populated out-of-band.
func buildTrigger(cfg *config.Config) (export.Trigger, error) {
	if cfg.ExportHook == "" {
		return export.NopTrigger{}, nil
	}
	trigger, err := export.NewHookTrigger(cfg.ExportHook)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse the export hook").
			WithSuggestion("Check export_hook in your config file for shell syntax errors").
			Wrap(err).
			BuildError()
	}
	trigger.Stdout = os.Stdout
	trigger.Stderr = os.Stderr
	return trigger, nil
}

// newResolver builds a version resolver over the publish root using the
// template-per-family mapping the publisher uses.
func (s *services) newResolver() *version.Resolver {
	return version.NewResolver(s.templates, s.cfg.PublishRoot, map[version.Family][]string{
		version.FamilyProject:    {"project_publish"},
		version.FamilyTexture:    {"texture_publish", "texture_publish_udim"},
		version.FamilyTextureSet: {"texture_set_publish_area"},
	})
}
