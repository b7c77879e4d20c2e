// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"texpub-cli/internal/export"
	"texpub-cli/internal/registry"
	"texpub-cli/internal/texture"
	"texpub-cli/internal/tmpl"
	"texpub-cli/internal/version"
	"texpub-cli/pkg/fspath"
	"texpub-cli/pkg/types"
)

// Template names the orchestrator resolves against. They must exist in the
// loaded template registry; New checks for them up front so a publish never
// fails halfway through because of a missing template.
const (
	tmplExportArea         = "textures_export_work_area"
	tmplTexturePublish     = "texture_publish"
	tmplTexturePublishUDIM = "texture_publish_udim"
	tmplSetPublishArea     = "texture_set_publish_area"
	tmplProjectWork        = "project_work"
	tmplProjectPublish     = "project_publish"
)

// udimToken replaces the concrete tile number in the path registered for a
// tiled map, so one record stands for the whole tile sequence.
const udimToken = "<UDIM>"

// udimSegmentRe matches the tile segment of a resolved tiled filename.
var udimSegmentRe = regexp.MustCompile(`\.\d{4}\.`)

type (
	// Options configures a Publisher. Templates, Exporter and Records are
	// required; Logger defaults to a stderr logger when nil.
	Options struct {
		Templates *tmpl.Registry
		Exporter  export.Trigger
		Records   registry.Client
		// WorkRoot is the root under which work areas and work files live.
		WorkRoot types.FilesystemPath
		// PublishRoot is the root under which publish paths are created.
		PublishRoot types.FilesystemPath
		// PresetPrefix is the required prefix of accepted export presets.
		PresetPrefix string
		// Timeout bounds one publish attempt end to end. Zero disables it.
		Timeout time.Duration
		Logger  *log.Logger
	}

	// Publisher runs texture set and project publishes: it triggers the
	// export, validates and aggregates its output, allocates versions,
	// copies files into the publish area and registers the results.
	//
	// A Publisher is safe for concurrent use. Publishes of distinct
	// identities run fully in parallel; publishes of the same identity are
	// serialized from version allocation through commit so they can never
	// allocate the same version.
	Publisher struct {
		reg      *tmpl.Registry
		exporter export.Trigger
		records  registry.Client
		resolver *version.Resolver

		workRoot     types.FilesystemPath
		publishRoot  types.FilesystemPath
		presetPrefix string
		timeout      time.Duration

		logger *log.Logger
		locks  *identityLocks
	}

	// TextureRequest identifies one texture publish attempt.
	TextureRequest struct {
		Asset  string
		Task   string
		Preset string
		// SetFilter, when non-empty, restricts the publish to the texture
		// set with this exported or publish name.
		SetFilter string
		// Description is attached to every created record.
		Description string
	}

	// SetResult reports one successfully published texture set.
	SetResult struct {
		// Name is the registered parent record name.
		Name    string
		Set     string
		Version int
		// Area is the versioned publish directory holding the set's files.
		Area types.FilesystemPath
		// Files lists every committed file path.
		Files []types.FilesystemPath
		// Record is the parent set record; MapRecords are its children in
		// map order.
		Record     registry.RecordID
		MapRecords []registry.RecordID
	}

	// ProjectRequest identifies one work file publish attempt.
	ProjectRequest struct {
		// WorkFile is the work file to publish, under the work root.
		WorkFile    types.FilesystemPath
		Description string
	}

	// ProjectResult reports one successfully published work file.
	ProjectResult struct {
		Name    string
		Version int
		Path    types.FilesystemPath
		Record  registry.RecordID
	}
)

// New creates a Publisher. It fails when a required collaborator is missing,
// the preset prefix is empty, or the template registry lacks one of the
// templates the publish flows resolve against.
func New(opts Options) (*Publisher, error) {
	if opts.Templates == nil {
		return nil, fmt.Errorf("template registry is required")
	}
	if opts.Exporter == nil {
		return nil, fmt.Errorf("export trigger is required")
	}
	if opts.Records == nil {
		return nil, fmt.Errorf("registry client is required")
	}
	if opts.WorkRoot == "" || opts.PublishRoot == "" {
		return nil, fmt.Errorf("work root and publish root are required")
	}
	if opts.PresetPrefix == "" {
		return nil, fmt.Errorf("preset prefix is required")
	}

	defined := make(map[string]bool)
	for _, name := range opts.Templates.TemplateNames() {
		defined[name] = true
	}
	required := []string{
		tmplExportArea, tmplTexturePublish, tmplTexturePublishUDIM,
		tmplSetPublishArea, tmplProjectWork, tmplProjectPublish,
	}
	for _, name := range required {
		if !defined[name] {
			return nil, fmt.Errorf("template %q is not defined", name)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "publish"})
	}

	resolver := version.NewResolver(opts.Templates, opts.PublishRoot, map[version.Family][]string{
		version.FamilyTexture:    {tmplTexturePublish, tmplTexturePublishUDIM},
		version.FamilyTextureSet: {tmplSetPublishArea},
		version.FamilyProject:    {tmplProjectPublish},
	})

	return &Publisher{
		reg:          opts.Templates,
		exporter:     opts.Exporter,
		records:      opts.Records,
		resolver:     resolver,
		workRoot:     opts.WorkRoot,
		publishRoot:  opts.PublishRoot,
		presetPrefix: opts.PresetPrefix,
		timeout:      opts.Timeout,
		logger:       logger,
		locks:        newIdentityLocks(),
	}, nil
}

// attempt tracks the lifecycle phase of one publish run for logging.
type attempt struct {
	logger *log.Logger
	state  State
}

func (a *attempt) to(next State) {
	a.logger.Debug("publish state change", "from", a.state, "to", next)
	a.state = next
}

// fail transitions to StateFailed and passes err through.
func (a *attempt) fail(err error) error {
	a.logger.Error("publish failed", "state", a.state, "error", err)
	a.state = StateFailed
	return err
}

// PublishTextures triggers the export for the requested preset, validates
// the exported files and publishes every aggregated texture set (or the one
// matching SetFilter). Sets already published when a later set fails are
// reported in the returned results alongside the error.
//
// Nothing is copied before validation passes: a preset outside the
// configured prefix, a scan diagnostic of error severity, an empty export or
// an inconsistent set all abort with ValidationError while the publish area
// is still untouched.
func (p *Publisher) PublishTextures(ctx context.Context, req TextureRequest) ([]SetResult, error) {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	a := &attempt{logger: p.logger, state: StateIdle}
	a.to(StateValidate)

	if req.Asset == "" || req.Task == "" {
		return nil, a.fail(&ValidationError{Reason: "asset and task are required"})
	}
	if !strings.HasPrefix(req.Preset, p.presetPrefix) {
		return nil, a.fail(&ValidationError{
			Reason: fmt.Sprintf("preset %q does not start with the configured prefix %q", req.Preset, p.presetPrefix),
		})
	}

	exportDir, err := p.resolveUnder(p.workRoot, tmplExportArea, map[string]any{
		"Asset":     req.Asset,
		"task_name": req.Task,
	})
	if err != nil {
		return nil, a.fail(&ValidationError{Reason: "resolving export work area", Cause: err})
	}

	a.to(StateExportScan)
	p.logger.Info("triggering export", "preset", req.Preset, "dir", exportDir)
	if err := p.exporter.Export(ctx, req.Preset, exportDir); err != nil {
		return nil, a.fail(err)
	}

	scan, err := texture.ScanExportArea(exportDir)
	if err != nil {
		return nil, a.fail(&ValidationError{Reason: "scanning export area", Cause: err})
	}
	if scan.HasErrors() {
		return nil, a.fail(&ValidationError{
			Reason:      "export area contains non-conforming files",
			Diagnostics: scan.Diagnostics,
		})
	}
	if len(scan.Files) == 0 {
		return nil, a.fail(&ValidationError{Reason: "export produced no files"})
	}

	sets, err := texture.Aggregate(scan.Files)
	if err != nil {
		return nil, a.fail(&ValidationError{Reason: "aggregating exported files", Cause: err})
	}
	sets = filterSets(sets, req.SetFilter)
	if len(sets) == 0 {
		return nil, a.fail(&ValidationError{
			Reason: fmt.Sprintf("no texture set matches %q", req.SetFilter),
		})
	}

	results := make([]SetResult, 0, len(sets))
	for i := range sets {
		res, err := p.publishSet(ctx, a, req, &sets[i])
		if err != nil {
			return results, a.fail(err)
		}
		results = append(results, res)
	}

	a.to(StateDone)
	return results, nil
}

// publishSet runs the stage, commit and register phases for one texture set.
// The identity lock is held from version allocation through commit and
// released before any registry call.
func (p *Publisher) publishSet(ctx context.Context, a *attempt, req TextureRequest, set *texture.TextureSet) (SetResult, error) {
	id := version.Identity{
		Asset:  req.Asset,
		Task:   req.Task,
		Name:   set.PublishName(),
		Family: version.FamilyTexture,
	}

	a.to(StateStage)
	release := p.locks.acquire(id)
	locked := true
	defer func() {
		if locked {
			release()
		}
	}()

	ver, err := p.resolver.NextVersion(ctx, id)
	if err != nil {
		return SetResult{}, err
	}
	p.logger.Info("publishing texture set",
		"set", set.Name, "asset", req.Asset, "task", req.Task, "version", ver)

	staged, area, err := p.stageSet(req, set, ver)
	if err != nil {
		return SetResult{}, &ValidationError{
			Reason: fmt.Sprintf("staging texture set %q", set.Name),
			Cause:  err,
		}
	}

	var plan []fileOp
	for _, sm := range staged {
		plan = append(plan, sm.ops...)
	}
	if err := verifyPlanSources(plan); err != nil {
		return SetResult{}, &ValidationError{Reason: "verifying publish sources", Cause: err}
	}

	a.to(StateCommit)
	copied, err := commit(ctx, plan)
	if err != nil {
		return SetResult{}, err
	}
	release()
	locked = false

	a.to(StateRegister)
	parentName := fmt.Sprintf("%s_%s_%s", req.Asset, req.Task, set.PublishName())
	childIDs := make([]registry.RecordID, 0, len(staged))
	for _, sm := range staged {
		recID, err := p.records.CreateRecord(ctx, registry.Record{
			Type:        registry.TypeTexture,
			Name:        fmt.Sprintf("%s_%s", parentName, sm.m.Name),
			Version:     ver,
			Asset:       req.Asset,
			Task:        req.Task,
			Path:        sm.recordPath,
			ColorSpace:  sm.m.ColorSpace,
			Tiled:       sm.m.Tiled,
			Description: req.Description,
		})
		if err != nil {
			return SetResult{}, &RegistrationError{Copied: copied, Cause: err}
		}
		childIDs = append(childIDs, recID)
	}

	parentID, err := p.records.CreateRecord(ctx, registry.Record{
		Type:        registry.TypeTextureSet,
		Name:        parentName,
		Version:     ver,
		Asset:       req.Asset,
		Task:        req.Task,
		Path:        area,
		Description: req.Description,
		Children:    childIDs,
	})
	if err != nil {
		return SetResult{}, &RegistrationError{Copied: copied, Cause: err}
	}

	p.logger.Info("texture set published",
		"name", parentName, "version", ver, "files", len(copied), "record", parentID)

	return SetResult{
		Name:       parentName,
		Set:        set.Name,
		Version:    ver,
		Area:       area,
		Files:      copied,
		Record:     parentID,
		MapRecords: childIDs,
	}, nil
}

// stagedMap pairs a texture map with its planned copies and the path its
// record will point at (the abstract tile path for tiled maps).
type stagedMap struct {
	m          texture.TextureMap
	recordPath types.FilesystemPath
	ops        []fileOp
}

// stageSet resolves the destination of every member file of the set at the
// given version, plus the versioned set area directory.
func (p *Publisher) stageSet(req TextureRequest, set *texture.TextureSet, ver int) ([]stagedMap, types.FilesystemPath, error) {
	base := map[string]any{
		"Asset":     req.Asset,
		"task_name": req.Task,
		"version":   ver,
	}

	area, err := p.resolveUnder(p.publishRoot, tmplSetPublishArea, base)
	if err != nil {
		return nil, "", err
	}

	staged := make([]stagedMap, 0, len(set.Maps))
	for _, m := range set.Maps {
		sm := stagedMap{m: m}
		for _, f := range m.Files {
			fields := map[string]any{
				"Asset":       req.Asset,
				"task_name":   req.Task,
				"version":     ver,
				"texture_set": set.PublishName(),
				"texture_map": m.Name,
				"colorspace":  m.ColorSpace,
				"extension":   f.Extension,
			}
			name := tmplTexturePublish
			if f.Tiled {
				name = tmplTexturePublishUDIM
				fields["UDIM"] = f.UDIM
			}
			dst, err := p.resolveUnder(p.publishRoot, name, fields)
			if err != nil {
				return nil, "", err
			}
			sm.ops = append(sm.ops, fileOp{Src: f.Path, Dst: dst})
			if sm.recordPath == "" {
				sm.recordPath = dst
				if f.Tiled {
					sm.recordPath = abstractTilePath(dst)
				}
			}
		}
		staged = append(staged, sm)
	}
	return staged, area, nil
}

// PublishProject publishes one work file: its identity is extracted from the
// work template, the next version allocated, the file copied to the resolved
// publish path and a single Project record created.
func (p *Publisher) PublishProject(ctx context.Context, req ProjectRequest) (ProjectResult, error) {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	a := &attempt{logger: p.logger, state: StateIdle}
	a.to(StateValidate)

	info, err := os.Stat(req.WorkFile.String())
	if err != nil || info.IsDir() {
		return ProjectResult{}, a.fail(&ValidationError{
			Reason: fmt.Sprintf("work file %s does not exist", req.WorkFile),
			Cause:  err,
		})
	}

	rel, err := filepath.Rel(p.workRoot.String(), req.WorkFile.String())
	if err != nil {
		return ProjectResult{}, a.fail(&ValidationError{
			Reason: fmt.Sprintf("work file %s is outside the work root", req.WorkFile),
			Cause:  err,
		})
	}
	fields, err := p.reg.Extract(tmplProjectWork, types.FilesystemPath(rel))
	if err != nil {
		return ProjectResult{}, a.fail(&ValidationError{
			Reason: fmt.Sprintf("work file %s does not match the work template", req.WorkFile),
			Cause:  err,
		})
	}
	asset, _ := fields["Asset"].(string)
	task, _ := fields["task_name"].(string)
	name, _ := fields["name"].(string)
	if asset == "" || task == "" || name == "" {
		return ProjectResult{}, a.fail(&ValidationError{
			Reason: fmt.Sprintf("work template yields an incomplete identity for %s", req.WorkFile),
		})
	}

	id := version.Identity{Asset: asset, Task: task, Name: name, Family: version.FamilyProject}

	a.to(StateStage)
	release := p.locks.acquire(id)
	locked := true
	defer func() {
		if locked {
			release()
		}
	}()

	ver, err := p.resolver.NextVersion(ctx, id)
	if err != nil {
		return ProjectResult{}, a.fail(err)
	}
	p.logger.Info("publishing work file",
		"name", name, "asset", asset, "task", task, "version", ver)

	dst, err := p.resolveUnder(p.publishRoot, tmplProjectPublish, map[string]any{
		"Asset":     asset,
		"task_name": task,
		"name":      name,
		"version":   ver,
	})
	if err != nil {
		return ProjectResult{}, a.fail(&ValidationError{Reason: "resolving publish path", Cause: err})
	}

	plan := []fileOp{{Src: req.WorkFile, Dst: dst}}
	if err := verifyPlanSources(plan); err != nil {
		return ProjectResult{}, a.fail(&ValidationError{Reason: "verifying publish sources", Cause: err})
	}

	a.to(StateCommit)
	copied, err := commit(ctx, plan)
	if err != nil {
		return ProjectResult{}, a.fail(err)
	}
	release()
	locked = false

	a.to(StateRegister)
	recID, err := p.records.CreateRecord(ctx, registry.Record{
		Type:        registry.TypeProject,
		Name:        name,
		Version:     ver,
		Asset:       asset,
		Task:        task,
		Path:        dst,
		Description: req.Description,
	})
	if err != nil {
		return ProjectResult{}, a.fail(&RegistrationError{Copied: copied, Cause: err})
	}

	a.to(StateDone)
	p.logger.Info("work file published", "name", name, "version", ver, "record", recID)

	return ProjectResult{Name: name, Version: ver, Path: dst, Record: recID}, nil
}

// resolveUnder resolves a template and anchors the relative result under
// root.
func (p *Publisher) resolveUnder(root types.FilesystemPath, name string, fields map[string]any) (types.FilesystemPath, error) {
	rel, err := p.reg.Resolve(name, fields)
	if err != nil {
		return "", err
	}
	return fspath.Join(root, rel), nil
}

// withDeadline applies the configured publish timeout, if any.
func (p *Publisher) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// abstractTilePath replaces the tile number segment of a resolved tiled
// filename with the UDIM token, yielding the sequence-wide path registered
// for the map.
func abstractTilePath(p types.FilesystemPath) types.FilesystemPath {
	dir, base := filepath.Dir(p.String()), filepath.Base(p.String())
	base = udimSegmentRe.ReplaceAllString(base, "."+udimToken+".")
	return types.FilesystemPath(filepath.Join(dir, base))
}

// filterSets returns the sets matching filter by exported or publish name,
// or all sets when filter is empty.
func filterSets(sets []texture.TextureSet, filter string) []texture.TextureSet {
	if filter == "" {
		return sets
	}
	var out []texture.TextureSet
	for _, s := range sets {
		if s.Name == filter || s.PublishName() == filter {
			out = append(out, s)
		}
	}
	return out
}
