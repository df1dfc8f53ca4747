package hcl

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/pdbuild/internal/config"
	"github.com/specialistvlad/pdbuild/internal/model"
)

// translator merges decoded files into one model. Singleton blocks may
// appear in one file only.
type translator struct {
	model *config.Model
	seen  map[string]string // block type -> file
}

func (t *translator) claim(block, file string) error {
	if t.seen == nil {
		t.seen = make(map[string]string)
	}
	if prev, ok := t.seen[block]; ok {
		return fmt.Errorf("duplicate %q block, first declared in %s", block, prev)
	}
	t.seen[block] = file
	return nil
}

func (t *translator) merge(file string, root *fileRoot) error {
	dir := filepath.Dir(file)
	m := t.model
	var errs []error

	if b := root.Build; b != nil {
		if err := t.claim("build", file); err != nil {
			return err
		}
		if b.KeepGoing != nil {
			m.Build.KeepGoing = *b.KeepGoing
		}
		if b.MaxCycles != nil {
			m.Build.MaxCycles = *b.MaxCycles
		}
		if b.Jobs != nil {
			m.Build.Jobs = *b.Jobs
		}
		if b.UnitGraph != nil {
			m.Build.UnitGraph = resolve(dir, *b.UnitGraph)
		}
	}

	if d := root.Driver; d != nil {
		if err := t.claim("driver", file); err != nil {
			return err
		}
		m.Driver = config.Driver{Command: d.Command, Args: d.Args, Dir: resolve(dir, d.Dir), Env: d.Env}
	}

	for _, p := range root.Platforms {
		platform := model.Host()
		if p.Triple != "" {
			platform = model.Cross(p.Triple)
		}
		if err := m.AddPlatform(p.Name, platform); err != nil {
			errs = append(errs, err)
		}
	}

	if lk := root.Linker; lk != nil {
		if err := t.claim("linker", file); err != nil {
			return err
		}
		m.Linker = &config.Linker{
			Path:    lk.Path,
			Entry:   lk.Entry,
			Arch:    lk.Arch,
			Flags:   lk.Flags,
			LinkMap: resolve(dir, lk.LinkMap),
		}
	}

	if ly := root.Layout; ly != nil {
		if err := t.claim("layout", file); err != nil {
			return err
		}
		m.Layout = config.Layout{Root: resolve(dir, ly.Root), BinaryName: ly.BinaryName, LibraryName: ly.LibraryName}
	}

	for _, u := range root.Units {
		if u.Target == nil {
			errs = append(errs, fmt.Errorf("unit %q: target block is required", u.PackageID))
			continue
		}
		m.Units = append(m.Units, config.Unit{
			PackageID: u.PackageID,
			Platforms: u.Platforms,
			Target: model.Target{
				Name:       u.Target.Name,
				Kind:       u.Target.Kind,
				CrateTypes: u.Target.CrateTypes,
				SrcPath:    resolve(dir, u.Target.SrcPath),
			},
		})
	}
	return errors.Join(errs...)
}

// resolve makes a manifest relative path relative to the manifest's
// directory. Empty paths stay empty.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
