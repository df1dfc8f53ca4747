package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/pdbuild/internal/config"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
build {
  keep_going = true
  jobs       = 4
}

driver {
  command = "cargo"
  args    = concat(["build", "--message-format=json"], [format("--target=%s", env.DEVICE_TRIPLE)])
  dir     = "game"
  env = {
    RUSTFLAGS = "-Ctarget-cpu=cortex-m7"
  }
}

platform "sim" {}

platform "device" {
  triple = env.DEVICE_TRIPLE
}

linker {
  entry    = "eventHandlerShim"
  link_map = "sdk/link_map.ld"
}

layout {
  root         = "out"
  library_name = lower("PDEX")
}

unit "path+file:///w/game#0.1.0" {
  platforms = ["sim", "device"]
  target {
    name        = "game"
    kind        = ["lib"]
    crate_types = ["staticlib", "cdylib"]
    src_path    = "/w/game/src/lib.rs"
  }
}
`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	path := writeManifest(t, dir, DefaultManifest, manifest)
	loader := &Loader{Env: map[string]string{"DEVICE_TRIPLE": "thumbv7em-none-eabihf"}}

	// --- Act ---
	m, err := loader.Load(ctx, path)

	// --- Assert ---
	require.NoError(t, err)
	want := &config.Model{
		Build: config.Build{KeepGoing: true, MaxCycles: config.DefaultMaxCycles, Jobs: 4},
		Driver: config.Driver{
			Command: "cargo",
			Args:    []string{"build", "--message-format=json", "--target=thumbv7em-none-eabihf"},
			Dir:     filepath.Join(dir, "game"),
			Env:     map[string]string{"RUSTFLAGS": "-Ctarget-cpu=cortex-m7"},
		},
		Platforms: map[string]model.Platform{
			"sim":    model.Host(),
			"device": model.Cross("thumbv7em-none-eabihf"),
		},
		PlatformNames: []string{"sim", "device"},
		Linker:        &config.Linker{Entry: "eventHandlerShim", LinkMap: filepath.Join(dir, "sdk", "link_map.ld")},
		Layout:        config.Layout{Root: filepath.Join(dir, "out"), LibraryName: "pdex"},
		Units: []config.Unit{{
			PackageID: "path+file:///w/game#0.1.0",
			Platforms: []string{"sim", "device"},
			Target: model.Target{
				Name:       "game",
				Kind:       []string{"lib"},
				CrateTypes: []string{"staticlib", "cdylib"},
				SrcPath:    "/w/game/src/lib.rs",
			},
		}},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Directory(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	writeManifest(t, dir, "a_driver.hcl", `driver { command = "cargo" }`)
	writeManifest(t, dir, "nested/b_platforms.hcl", `platform "sim" {}`)
	writeManifest(t, dir, "README.md", `not a manifest`)

	// --- Act ---
	m, err := (&Loader{Env: map[string]string{}}).Load(ctx, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "cargo", m.Driver.Command)
	assert.Equal(t, []string{"sim"}, m.PlatformNames)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `driver {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"a.hcl": `driver { command = "cargo" }` + "\nstep \"x\" {}"},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "missing env variable",
			files:   map[string]string{"a.hcl": `driver { command = env.CARGO }`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "missing driver",
			files:   map[string]string{"a.hcl": `platform "sim" {}`},
			wantErr: "driver: command is required",
		},
		{
			name: "unknown platform",
			files: map[string]string{"a.hcl": `
driver { command = "cargo" }
unit "game" {
  platforms = ["device"]
  target {
    name = "game"
    kind = ["lib"]
  }
}`},
			wantErr: `unknown platform "device"`,
		},
		{
			name: "zero cycles",
			files: map[string]string{"a.hcl": `
driver { command = "cargo" }
build { max_cycles = 0 }`},
			wantErr: "max_cycles must be at least 1",
		},
		{
			name: "duplicate singleton block",
			files: map[string]string{
				"a.hcl": `driver { command = "cargo" }`,
				"b.hcl": `driver { command = "xargo" }`,
			},
			wantErr: `duplicate "driver" block`,
		},
		{
			name: "duplicate platform",
			files: map[string]string{"a.hcl": `
driver { command = "cargo" }
platform "sim" {}
platform "sim" {}`},
			wantErr: "declared more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			dir := t.TempDir()
			for name, content := range tt.files {
				writeManifest(t, dir, name, content)
			}

			_, err := (&Loader{Env: map[string]string{}}).Load(ctx, dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), DefaultManifest))
	require.ErrorIs(t, err, os.ErrNotExist)
}
