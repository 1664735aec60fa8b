package vmax

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Archive is an opened .vmax directory: the scene document plus lazy access
// to the per-model asset files it references.
type Archive struct {
	Dir   string
	Scene *SceneDoc

	warn func(format string, args ...any)
}

// OpenArchive parses dir/scene.json. warn receives non-fatal diagnostics
// (skipped elements, schema violations); nil discards them.
func OpenArchive(dir string, warn func(format string, args ...any)) (*Archive, error) {
	doc, err := ParseScene(filepath.Join(dir, "scene.json"), warn)
	if err != nil {
		return nil, err
	}
	return &Archive{Dir: dir, Scene: doc, warn: warn}, nil
}

// LoadModel decodes one model artifact: its snapshots from obj.DataFile,
// its palette from obj.PaletteFile and its materials from the settings tree
// next to the palette. The returned model is complete and immutable.
func (a *Archive) LoadModel(obj Object) (*Model, error) {
	model := NewModel(obj.DataFile)

	palette, err := ReadPalette(filepath.Join(a.Dir, obj.PaletteFile), a.warn)
	if err != nil {
		return nil, err
	}
	model.SetColors(palette)

	settingsFile := strings.TrimSuffix(obj.PaletteFile, ".png") + ".settings.vmaxpsb"
	settings, err := ReadTree(filepath.Join(a.Dir, settingsFile), false)
	if err != nil {
		return nil, err
	}
	model.SetMaterials(ReadMaterials(settings, a.warn))

	root, err := ReadTree(filepath.Join(a.Dir, obj.DataFile), true)
	if err != nil {
		return nil, err
	}
	snapshots, ok := treeArray(root, "snapshots")
	if !ok {
		return nil, fmt.Errorf("%s: %w: no snapshots array", obj.DataFile, ErrTreeParse)
	}
	DecodeSnapshots(model, snapshots, a.warn)
	return model, nil
}
