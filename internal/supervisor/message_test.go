package supervisor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Artifact(t *testing.T) {
	line := `{"reason":"compiler-artifact","package_id":"path+file:///w/game#0.1.0","target":{"name":"game","kind":["bin"],"crate_types":["bin"],"src_path":"/w/game/src/main.rs"},"profile":{"opt_level":"0","debuginfo":2,"debug_assertions":true,"overflow_checks":true,"test":false},"filenames":["/w/target/debug/game"],"executable":"/w/target/debug/game","fresh":true}`

	ev, err := Decode([]byte(line))
	require.NoError(t, err)
	require.Equal(t, EventArtifact, ev.Kind)

	want := model.Artifact{
		PackageID:  "path+file:///w/game#0.1.0",
		Target:     model.Target{Name: "game", Kind: []string{"bin"}, CrateTypes: []string{"bin"}, SrcPath: "/w/game/src/main.rs"},
		Filenames:  []string{"/w/target/debug/game"},
		Executable: "/w/target/debug/game",
		Profile:    model.Profile{OptLevel: "0", DebugInfo: 2, DebugAssertions: true, OverflowChecks: true},
		Fresh:      true,
	}
	if diff := cmp.Diff(want, ev.Artifact); diff != "" {
		t.Errorf("artifact mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NullExecutable(t *testing.T) {
	ev, err := Decode([]byte(`{"reason":"compiler-artifact","package_id":"p","target":{"name":"game"},"filenames":["a.rlib"],"executable":null}`))
	require.NoError(t, err)
	assert.False(t, ev.Artifact.IsExecutable())
}

func TestDecode_Message(t *testing.T) {
	ev, err := Decode([]byte(`{"reason":"compiler-message","package_id":"p","message":{"level":"warning","message":"unused","rendered":"warning: unused\n"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventDiagnostic, ev.Kind)
	assert.Equal(t, Diagnostic{Level: "warning", Message: "unused", Rendered: "warning: unused\n"}, ev.Diagnostic)
}

func TestDecode_BuildFinished(t *testing.T) {
	ev, err := Decode([]byte(`{"reason":"build-finished","success":false}`))
	require.NoError(t, err)
	assert.Equal(t, EventFinished, ev.Kind)
	assert.False(t, ev.Success)

	_, err = Decode([]byte(`{"reason":"build-finished"}`))
	assert.ErrorContains(t, err, "without success flag")
}

func TestDecode_Other(t *testing.T) {
	for _, line := range []string{
		``,
		`   Compiling game v0.1.0`,
		`{"reason":"build-script-executed","package_id":"p"}`,
	} {
		ev, err := Decode([]byte(line))
		require.NoError(t, err, "line %q", line)
		assert.Equal(t, EventOther, ev.Kind, "line %q", line)
	}

	_, err := Decode([]byte(`{"reason":`))
	assert.Error(t, err)
}
