package oracle

import (
	"errors"
	"testing"

	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kind(k model.OutputKind) *model.OutputKind { return model.KindPtr(k) }

func TestValidate(t *testing.T) {
	t.Run("exact match by name", func(t *testing.T) {
		preds := []Prediction{
			{Filename: "libgame.so", Kind: kind(model.OutputDynamicLibrary)},
			{Filename: "libgame.a", Kind: kind(model.OutputStaticLibrary)},
		}
		kinds, ok := Validate(preds, []string{"/t/debug/libgame.a", "/t/debug/libgame.so"})
		require.True(t, ok)
		assert.Equal(t, []model.OutputKind{model.OutputStaticLibrary, model.OutputDynamicLibrary}, kinds)
	})

	t.Run("hashed names pair by extension", func(t *testing.T) {
		preds := []Prediction{{Filename: "libgame.rlib", Kind: kind(model.OutputIntermediateLibrary)}}
		kinds, ok := Validate(preds, []string{"/t/debug/deps/libgame-0123abcd.rlib"})
		require.True(t, ok)
		assert.Equal(t, []model.OutputKind{model.OutputIntermediateLibrary}, kinds)
	})

	t.Run("count mismatch is rejected", func(t *testing.T) {
		preds := []Prediction{{Filename: "libgame.a", Kind: kind(model.OutputStaticLibrary)}}
		_, ok := Validate(preds, []string{"libgame.a", "libgame.so"})
		assert.False(t, ok)

		_, ok = Validate(append(preds, preds...), []string{"libgame.a"})
		assert.False(t, ok)
	})

	t.Run("one indeterminate kind invalidates everything", func(t *testing.T) {
		preds := []Prediction{
			{Filename: "libgame.a", Kind: kind(model.OutputStaticLibrary)},
			{Filename: "libgame.xyz"},
		}
		_, ok := Validate(preds, []string{"libgame.a", "libgame.xyz"})
		assert.False(t, ok)
	})

	t.Run("empty sets match", func(t *testing.T) {
		kinds, ok := Validate(nil, nil)
		assert.True(t, ok)
		assert.Empty(t, kinds)
	})
}

func TestInferKind(t *testing.T) {
	assert.Equal(t, model.OutputStaticLibrary, InferKind("libgame.a"))
	assert.Equal(t, model.OutputDynamicLibrary, InferKind("libgame.dylib"))
	assert.Equal(t, model.OutputIntermediateLibrary, InferKind("libgame.rlib"))
	assert.Equal(t, model.OutputExecutable, InferKind("/t/debug/game"))
	assert.Equal(t, model.OutputOther, InferKind("game.d"))
}

func TestConventional_Predict(t *testing.T) {
	lib := model.Unit{Target: model.Target{Name: "my-game", Kind: []string{"cdylib", "staticlib"}, CrateTypes: []string{"cdylib", "staticlib"}}}
	bin := model.Unit{Target: model.Target{Name: "my-game", Kind: []string{"bin"}, CrateTypes: []string{"bin"}}}

	cases := []struct {
		name     string
		oracle   Conventional
		unit     model.Unit
		platform model.Platform
		want     []Prediction
	}{
		{
			name:     "linux host library",
			oracle:   Conventional{HostOS: "linux"},
			unit:     lib,
			platform: model.Host(),
			want: []Prediction{
				{Filename: "libmy_game.so", Kind: kind(model.OutputDynamicLibrary)},
				{Filename: "libmy_game.a", Kind: kind(model.OutputStaticLibrary)},
			},
		},
		{
			name:     "macos host library",
			oracle:   Conventional{HostOS: "darwin"},
			unit:     lib,
			platform: model.Host(),
			want: []Prediction{
				{Filename: "libmy_game.dylib", Kind: kind(model.OutputDynamicLibrary)},
				{Filename: "libmy_game.a", Kind: kind(model.OutputStaticLibrary)},
			},
		},
		{
			name:     "windows msvc library",
			oracle:   Conventional{},
			unit:     lib,
			platform: model.Cross("x86_64-pc-windows-msvc"),
			want: []Prediction{
				{Filename: "my_game.dll", Kind: kind(model.OutputDynamicLibrary)},
				{Filename: "my_game.lib", Kind: kind(model.OutputStaticLibrary)},
			},
		},
		{
			name:     "bare metal library drops dynamic crate types",
			oracle:   Conventional{},
			unit:     lib,
			platform: model.Cross("thumbv7em-none-eabihf"),
			want:     []Prediction{{Filename: "libmy_game.a", Kind: kind(model.OutputStaticLibrary)}},
		},
		{
			name:     "windows executable",
			oracle:   Conventional{HostOS: "windows"},
			unit:     bin,
			platform: model.Host(),
			want:     []Prediction{{Filename: "my-game.exe", Kind: kind(model.OutputExecutable)}},
		},
		{
			name:     "unknown crate type is indeterminate",
			oracle:   Conventional{},
			unit:     model.Unit{Target: model.Target{Name: "x", CrateTypes: []string{"mystery"}}},
			platform: model.Host(),
			want:     []Prediction{{}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.oracle.Predict(tc.unit, tc.platform)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCached(t *testing.T) {
	calls := 0
	inner := Func(func(u model.Unit, p model.Platform) ([]Prediction, error) {
		calls++
		if u.Target.Name == "broken" {
			return nil, errors.New("no prediction")
		}
		return []Prediction{{Filename: u.Target.Name, Kind: kind(model.OutputExecutable)}}, nil
	})

	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	unit := model.Unit{PackageID: "p", Target: model.Target{Name: "game"}}
	for range 3 {
		preds, err := c.Predict(unit, model.Host())
		require.NoError(t, err)
		require.Len(t, preds, 1)
	}
	assert.Equal(t, 1, calls)

	_, err = c.Predict(unit, model.Cross("thumbv7em-none-eabihf"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "platform is part of the key")

	broken := model.Unit{Target: model.Target{Name: "broken"}}
	_, err = c.Predict(broken, model.Host())
	assert.Error(t, err)
	_, err = c.Predict(broken, model.Host())
	assert.Error(t, err)
	assert.Equal(t, 4, calls, "errors are not cached")
	assert.Equal(t, 2, c.Len())

	_, err = NewCached(inner, 0)
	assert.Error(t, err)
}
