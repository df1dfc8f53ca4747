package config

import (
	"testing"

	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Validate(t *testing.T) {
	m := NewModel()
	m.Build.Jobs = 0
	m.Units = []Unit{{PackageID: "game", Platforms: []string{"device"}}}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver: command is required")
	assert.Contains(t, err.Error(), "jobs must be at least 1")
	assert.Contains(t, err.Error(), `unknown platform "device"`)

	m.Driver.Command = "cargo"
	m.Build.Jobs = 2
	require.NoError(t, m.AddPlatform("device", model.Cross("thumbv7em-none-eabihf")))
	assert.NoError(t, m.Validate())
}

func TestModel_AddPlatformTwice(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.AddPlatform("sim", model.Host()))
	assert.ErrorContains(t, m.AddPlatform("sim", model.Host()), "declared more than once")
}

func TestModel_Roots(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.AddPlatform("sim", model.Host()))
	require.NoError(t, m.AddPlatform("device", model.Cross("thumbv7em-none-eabihf")))
	target := model.Target{Name: "game", Kind: []string{"lib"}}
	m.Units = []Unit{{PackageID: "game", Platforms: []string{"sim", "device"}, Target: target}}

	roots, err := m.Roots()
	require.NoError(t, err)
	assert.Equal(t, []model.Unit{
		{Index: 0, PackageID: "game", Target: target, Platform: model.Host()},
		{Index: 1, PackageID: "game", Target: target, Platform: model.Cross("thumbv7em-none-eabihf")},
	}, roots)
}

func TestDriver_EnvList(t *testing.T) {
	d := Driver{Env: map[string]string{"RUSTFLAGS": "-Ctarget-cpu=cortex-m7", "CARGO_TERM_COLOR": "always"}}
	assert.Equal(t, []string{"CARGO_TERM_COLOR=always", "RUSTFLAGS=-Ctarget-cpu=cortex-m7"}, d.EnvList())
}
