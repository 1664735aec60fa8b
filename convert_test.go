package vmaxtui

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelforge/vmaxtui/bella"
	"github.com/voxelforge/vmaxtui/vmax"
)

func writeArchive(t *testing.T, sceneJSON string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "teapot.vmax")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.json"), []byte(sceneJSON), 0o644))
	return dir
}

func TestConvertEssentialsOnly(t *testing.T) {
	dir := writeArchive(t, `{"groups": [], "objects": []}`)

	scene, err := NewConverter(nil).Convert(dir)
	require.NoError(t, err)

	cam := scene.FindNode("vxCamera")
	require.True(t, cam.Valid())
	assert.Equal(t, "camera", cam.Type)
	assert.Equal(t, bella.Vec2{X: 1920, Y: 1080}, cam.Get("resolution"))
	assert.Same(t, scene.FindNode("vxThinLens"), cam.Get("lens"))
	assert.Same(t, scene.FindNode("vxSensor"), cam.Get("sensor"))

	settings := scene.Settings()
	assert.Same(t, cam, settings.Get("camera"))
	assert.Same(t, scene.FindNode("vxBeautyPass"), settings.Get("beautyPass"))
	assert.Same(t, scene.FindNode("vxGroundPlane"), settings.Get("groundPlane"))
	assert.Equal(t, 0, settings.Get("threads"))
	assert.Equal(t, "maya", settings.Get("iprNavigation"))

	assert.Equal(t, -0.5, scene.FindNode("vxGroundPlane").Get("elevation"))
	assert.Equal(t, 14.0, scene.FindNode("vxColorDome").Get("altitude"))

	voxel := scene.FindNode("vxVoxel")
	require.True(t, voxel.Valid())
	assert.Equal(t, 0.33, voxel.Get("radius"))
	assert.Equal(t, 0.99, voxel.Get("sizeX"))
	assert.Equal(t, 0.99945, scene.FindNode("vxLiqVoxel").Get("sizeZ"))
	assert.True(t, scene.FindNode("vxMeshVoxel").Valid())
	assert.True(t, scene.FindNode("vxVoxelXform").Valid())
}

func TestConvertGroupHierarchy(t *testing.T) {
	dir := writeArchive(t, `{
		"groups": [
			{"id": "child", "pid": "root", "t_p": [1, 2, 3]},
			{"id": "root"},
			{"id": "orphan", "pid": "missing"}
		],
		"objects": []
	}`)

	scene, err := NewConverter(nil).Convert(dir)
	require.NoError(t, err)

	root := scene.FindNode("_root")
	child := scene.FindNode("_child")
	orphan := scene.FindNode("_orphan")
	require.True(t, root.Valid())
	require.True(t, child.Valid())
	require.True(t, orphan.Valid())

	assert.Contains(t, scene.World().Children(), root)
	assert.Contains(t, root.Children(), child)
	// Unknown parents fall back to the world rather than dropping the node.
	assert.Contains(t, scene.World().Children(), orphan)

	m, ok := child.Get("steps.0.xform").(mgl64.Mat4)
	require.True(t, ok, "group transform not set")
	assert.Equal(t, 1.0, m[12])
	assert.Equal(t, 2.0, m[13])
	assert.Equal(t, 3.0, m[14])
}

func TestConvertMissingScene(t *testing.T) {
	_, err := NewConverter(nil).Convert(t.TempDir())
	assert.ErrorIs(t, err, vmax.ErrAssetMissing)
}

func TestConvertFileWritesArchive(t *testing.T) {
	dir := writeArchive(t, `{"groups": [], "objects": []}`)

	require.NoError(t, NewConverter(nil).ConvertFile(dir, ""))

	out := strings.TrimSuffix(dir, ".vmax") + ".bsz"
	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 1)
	assert.Equal(t, "teapot.bsa", zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	text, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Contains(t, string(text), "camera vxCamera {")
	assert.Contains(t, string(text), "settings settings {")
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		input, override, want string
	}{
		{"model.vmax", "", "model.bsz"},
		{"contents1.vmaxb", "", "contents1.bsz"},
		{"plain", "", "plain.bsz"},
		{"model.vmax", "custom.bsz", "custom.bsz"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OutputPath(tc.input, tc.override), tc.input)
	}
}

func TestNodeName(t *testing.T) {
	assert.Equal(t, "_9c0a54b4_96f2_4fb1_92bd_5d40373e29e5",
		nodeName("9c0a54b4-96f2-4fb1-92bd-5d40373e29e5"))
	assert.Equal(t, "_plain", nodeName("plain"))
}

func TestComposeTransformIdentity(t *testing.T) {
	m := composeTransform(vmax.IdentityTransform())
	for i := 0; i < 16; i++ {
		want := 0.0
		if i%5 == 0 {
			want = 1.0
		}
		assert.InDelta(t, want, m[i], 1e-12, "element %d", i)
	}
}

func TestComposeTransformTranslation(t *testing.T) {
	xf := vmax.IdentityTransform()
	xf.Position = [3]float64{5, -2, 7.5}
	m := composeTransform(xf)

	// Translation lives in the last flat quad of the stored matrix.
	assert.Equal(t, 5.0, m[12])
	assert.Equal(t, -2.0, m[13])
	assert.Equal(t, 7.5, m[14])
	assert.Equal(t, 1.0, m[15])
}

func TestComposeTransformScale(t *testing.T) {
	xf := vmax.IdentityTransform()
	xf.Scale = [3]float64{2, 3, 4}
	m := composeTransform(xf)
	assert.Equal(t, 2.0, m[0])
	assert.Equal(t, 3.0, m[5])
	assert.Equal(t, 4.0, m[10])
}

func TestComposeTransformRotation(t *testing.T) {
	xf := vmax.IdentityTransform()
	xf.Rotation = [4]float64{0, 0, 1, math.Pi / 2}
	m := composeTransform(xf)

	// Quarter turn about z maps x to y.
	assert.InDelta(t, 0.0, m[0], 1e-12)
	assert.InDelta(t, 1.0, m[1], 1e-12)
	assert.InDelta(t, -1.0, m[4], 1e-12)
	assert.InDelta(t, 0.0, m[5], 1e-12)
}

func TestComposeTransformZeroAxis(t *testing.T) {
	xf := vmax.IdentityTransform()
	xf.Rotation = [4]float64{0, 0, 0, 1.5}
	m := composeTransform(xf)
	for i := 0; i < 16; i++ {
		assert.False(t, math.IsNaN(m[i]), "element %d is NaN", i)
	}
	assert.Equal(t, 1.0, m[0])
}

func materialNode(t *testing.T) *bella.Node {
	t.Helper()
	return bella.NewScene().CreateNode("quickMaterial", "m")
}

func TestConfigureMaterialLiquid(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 7, vmax.Material{}, vmax.RGBA{A: 255})
	assert.Equal(t, "liquid", n.Get("type"))
	assert.Equal(t, 100.0, n.Get("liquidDepth"))
	assert.Equal(t, 1.11, n.Get("ior"))
}

func TestConfigureMaterialGlassSlot(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 6, vmax.Material{Roughness: 0.2}, vmax.RGBA{A: 255})
	assert.Equal(t, "glass", n.Get("type"))
	assert.InDelta(t, 20.0, n.Get("roughness").(float64), 1e-9)
	assert.Equal(t, 200.0, n.Get("glassDepth"))
}

func TestConfigureMaterialGlassByAlpha(t *testing.T) {
	// Any translucent color renders as glass regardless of slot.
	n := materialNode(t)
	configureMaterial(n, 0, vmax.Material{Metalness: 0.9}, vmax.RGBA{A: 128})
	assert.Equal(t, "glass", n.Get("type"))
}

func TestConfigureMaterialMetal(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 1, vmax.Material{Metalness: 0.5, Roughness: 0.1}, vmax.RGBA{A: 255})
	assert.Equal(t, "metal", n.Get("type"))
	assert.InDelta(t, 10.0, n.Get("roughness").(float64), 1e-9)
}

func TestConfigureMaterialDielectric(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 2, vmax.Material{Transmission: 0.7}, vmax.RGBA{A: 255})
	assert.Equal(t, "dielectric", n.Get("type"))
	assert.Equal(t, 0.7, n.Get("transmission"))
}

func TestConfigureMaterialEmitter(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 3, vmax.Material{Emission: 2.0}, vmax.RGBA{A: 255})
	assert.Equal(t, "emitter", n.Get("type"))
	assert.Equal(t, "radiance", n.Get("emitterUnit"))
	assert.Equal(t, 1000.0, n.Get("emitterEnergy"))
}

func TestConfigureMaterialPlasticDefault(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 0, vmax.Material{Roughness: 0.5}, vmax.RGBA{A: 255})
	assert.Equal(t, "plastic", n.Get("type"))
	assert.InDelta(t, 50.0, n.Get("roughness").(float64), 1e-9)
}

func TestConfigureMaterialColorConversion(t *testing.T) {
	n := materialNode(t)
	configureMaterial(n, 0, vmax.Material{}, vmax.RGBA{R: 255, G: 0, B: 128, A: 51})
	c := n.Get("color").(bella.Rgba)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 0.0, c.G, 1e-9)
	assert.InDelta(t, srgbToLinear(128.0/255), c.B, 1e-12)
	// Alpha stays linear.
	assert.InDelta(t, 0.2, c.A, 1e-9)
}

func TestSrgbToLinear(t *testing.T) {
	assert.Equal(t, 0.0, srgbToLinear(0))
	assert.InDelta(t, 1.0, srgbToLinear(1), 1e-12)
	// Below the knee the curve is a straight division.
	assert.InDelta(t, 0.04/12.92, srgbToLinear(0.04), 1e-12)
	// sRGB mid grey.
	assert.InDelta(t, 0.2140, srgbToLinear(0.5), 1e-3)
}
