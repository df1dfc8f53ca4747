package unitgraph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graph = `{
  "version": 1,
  "units": [
    {
      "pkg_id": "registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150",
      "target": {"kind": ["lib"], "crate_types": ["lib"], "name": "libc", "src_path": "/r/libc/src/lib.rs", "edition": "2015"},
      "platform": null, "mode": "build", "features": [], "dependencies": []
    },
    {
      "pkg_id": "path+file:///w/game#0.1.0",
      "target": {"kind": ["lib"], "crate_types": ["staticlib"], "name": "game", "src_path": "/w/game/src/lib.rs", "edition": "2021"},
      "platform": "thumbv7em-none-eabihf", "mode": "build", "dependencies": [{"index": 0}]
    },
    {
      "pkg_id": "path+file:///w/game#0.1.0",
      "target": {"kind": ["lib"], "crate_types": ["cdylib"], "name": "game", "src_path": "/w/game/src/lib.rs", "edition": "2021"},
      "platform": null, "mode": "build", "dependencies": [{"index": 0}]
    },
    {
      "pkg_id": "path+file:///w/game#0.1.0",
      "target": {"kind": ["lib"], "crate_types": ["cdylib"], "name": "game", "src_path": "/w/game/src/lib.rs", "edition": "2021"},
      "platform": null, "mode": "doc", "dependencies": []
    }
  ],
  "roots": [2, 3, 1]
}`

func TestParse(t *testing.T) {
	roots, err := Parse(strings.NewReader(graph))
	require.NoError(t, err)

	lib := model.Target{Name: "game", Kind: []string{"lib"}, SrcPath: "/w/game/src/lib.rs"}
	host, dev := lib, lib
	host.CrateTypes = []string{"cdylib"}
	dev.CrateTypes = []string{"staticlib"}
	want := []model.Unit{
		{Index: 0, PackageID: "path+file:///w/game#0.1.0", Target: host, Platform: model.Host()},
		{Index: 1, PackageID: "path+file:///w/game#0.1.0", Target: dev, Platform: model.Cross("thumbv7em-none-eabihf")},
	}
	if diff := cmp.Diff(want, roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"version": 2, "units": [], "roots": []}`))
	assert.ErrorContains(t, err, "unsupported unit graph version 2")

	_, err = Parse(strings.NewReader(`{"version": 1, "units": [], "roots": [0]}`))
	assert.ErrorContains(t, err, "out of range")

	_, err = Parse(strings.NewReader(`not json`))
	assert.ErrorContains(t, err, "decoding unit graph")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.json")
	require.NoError(t, os.WriteFile(path, []byte(graph), 0o644))

	roots, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
