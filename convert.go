package vmaxtui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxelforge/vmaxtui/bella"
	"github.com/voxelforge/vmaxtui/vmax"
)

// Converter builds target scenes from .vmax archives.
type Converter struct {
	log Logger
}

func NewConverter(log Logger) *Converter {
	if log == nil {
		log = NewNopLogger()
	}
	return &Converter{log: log}
}

// OutputPath derives the target scene path from the input archive path,
// replacing a trailing .vmax or .vmaxb with .bsz. An explicit override wins.
func OutputPath(input, override string) string {
	if override != "" {
		return override
	}
	for _, suffix := range []string{".vmaxb", ".vmax"} {
		if strings.HasSuffix(input, suffix) {
			return strings.TrimSuffix(input, suffix) + ".bsz"
		}
	}
	return input + ".bsz"
}

// ConvertFile converts a .vmax archive and writes the scene next to it (or
// at output when non-empty).
func (c *Converter) ConvertFile(input, output string) error {
	scene, err := c.Convert(input)
	if err != nil {
		return err
	}
	out := OutputPath(input, output)
	if err := scene.Write(out); err != nil {
		return err
	}
	c.log.Infof("wrote %s: %s", out, scene.Stats())
	return nil
}

// Convert builds the target scene for one .vmax archive: essentials, one
// canonical subgraph per unique model artifact, then the group and instance
// hierarchy. The whole build runs inside a single batched-event scope so a
// subscriber never observes a partial scene.
func (c *Converter) Convert(dir string) (*bella.Scene, error) {
	arch, err := vmax.OpenArchive(dir, c.log.Warnf)
	if err != nil {
		return nil, err
	}

	scene := bella.NewScene()
	done := scene.Batch()
	defer done()

	world := scene.World()
	buildEssentials(scene)

	// Canonical models: decode each unique artifact once, no matter how
	// many instances reference it.
	byModel := arch.Scene.ModelInstances()
	modelNames := make([]string, 0, len(byModel))
	for name := range byModel {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)

	canonical := make(map[string]*bella.Node, len(modelNames))
	for _, name := range modelNames {
		instances := byModel[name]
		sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
		byModel[name] = instances

		model, err := arch.LoadModel(instances[0])
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
		c.log.Debugf("model %s: %d voxels", name, model.TotalVoxels())
		canonical[name] = addModelToScene(scene, model)
	}

	// Groups need two passes: parents may be declared after children.
	groupIDs := make([]string, 0, len(arch.Scene.Groups))
	for id := range arch.Scene.Groups {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	groupNodes := make(map[string]*bella.Node, len(groupIDs))
	for _, id := range groupIDs {
		group := arch.Scene.Groups[id]
		node := scene.CreateNode("xform", nodeName(id))
		node.SetXform(composeTransform(group.Xform))
		groupNodes[id] = node
	}
	for _, id := range groupIDs {
		group := arch.Scene.Groups[id]
		if group.ParentID == "" {
			groupNodes[id].ParentTo(world)
		} else if parent, ok := groupNodes[group.ParentID]; ok {
			groupNodes[id].ParentTo(parent)
		} else {
			c.log.Warnf("group %s: unknown parent %s, attaching to world", id, group.ParentID)
			groupNodes[id].ParentTo(world)
		}
	}

	// Instances: one xform per object, canonical subgraph linked under it.
	for _, name := range modelNames {
		for _, obj := range byModel[name] {
			node := scene.CreateNode("xform", nodeName(obj.ID))
			node.SetXform(composeTransform(obj.Xform))
			if obj.ParentID == "" {
				node.ParentTo(world)
			} else if parent, ok := groupNodes[obj.ParentID]; ok {
				node.ParentTo(parent)
			} else {
				c.log.Warnf("object %s: unknown parent %s, attaching to world", obj.ID, obj.ParentID)
				node.ParentTo(world)
			}
			canonical[name].ParentTo(node)
		}
	}

	return scene, nil
}

// buildEssentials creates the fixed scene furniture: camera rig, lighting
// environment, ground, render pass, canonical voxel geometry and global
// settings.
func buildEssentials(scene *bella.Scene) {
	world := scene.World()
	done := scene.Batch()
	defer done()

	camForm := scene.CreateNode("xform", "vxCameraXform")
	cam := scene.CreateNode("camera", "vxCamera")
	sensor := scene.CreateNode("sensor", "vxSensor")
	lens := scene.CreateNode("thinLens", "vxThinLens")
	imageDome := scene.CreateNode("imageDome", "vxImageDome")
	groundPlane := scene.CreateNode("groundPlane", "vxGroundPlane")
	beautyPass := scene.CreateNode("beautyPass", "vxBeautyPass")
	groundMat := scene.CreateNode("quickMaterial", "vxGroundMat")
	colorDome := scene.CreateNode("colorDome", "vxColorDome")
	settings := scene.Settings()

	cam.Set("resolution", bella.Vec2{X: 1920, Y: 1080})
	cam.Set("lens", lens)
	cam.Set("sensor", sensor)
	camForm.ParentTo(world)
	cam.ParentTo(camForm)
	camForm.SetXform(mgl64.Mat4{
		0.525768608156, -0.850627633385, 0, 0,
		-0.234464751651, -0.144921468924, -0.961261695938, 0,
		0.817675761479, 0.505401223947, -0.275637355817, 0,
		-88.12259018466, -54.468125200218, 50.706001690932, 1,
	})

	imageDome.Set("ext", ".jpg")
	imageDome.Set("dir", "./res")
	imageDome.Set("multiplier", 6.0)
	imageDome.Set("file", "DayEnvironmentHDRI019_1K-TONEMAPPED")
	imageDome.Set("overrides.background", colorDome)
	colorDome.Set("zenith", bella.Rgba{R: 1, G: 1, B: 1, A: 1})
	colorDome.Set("horizon", bella.Rgba{R: 0.85, G: 0.76, B: 0.294, A: 1})
	colorDome.Set("altitude", 14.0)

	groundPlane.Set("elevation", -0.5)
	groundPlane.Set("material", groundMat)
	groundMat.Set("type", "metal")
	groundMat.Set("roughness", 22.0)
	groundMat.Set("color", bella.Rgba{R: 0.138431623578, G: 0.5, B: 0.3, A: 1})

	settings.Set("beautyPass", beautyPass)
	settings.Set("camera", cam)
	settings.Set("environment", colorDome)
	settings.Set("iprScale", 100.0)
	settings.Set("threads", 0) // auto-detect
	settings.Set("groundPlane", groundPlane)
	settings.Set("iprNavigation", "maya")

	voxel := scene.CreateNode("box", "vxVoxel")
	liqVoxel := scene.CreateNode("box", "vxLiqVoxel")
	voxelForm := scene.CreateNode("xform", "vxVoxelXform")
	scene.CreateNode("xform", "vxLiqVoxelXform")
	voxelMat := scene.CreateNode("orenNayar", "vxVoxelMat")
	scene.CreateNode("mesh", "vxMeshVoxel")

	voxel.Set("radius", 0.33)
	voxel.Set("sizeX", 0.99)
	voxel.Set("sizeY", 0.99)
	voxel.Set("sizeZ", 0.99)

	// Tighter gap lets more light pass through liquids.
	liqVoxel.Set("sizeX", 0.99945)
	liqVoxel.Set("sizeY", 0.99945)
	liqVoxel.Set("sizeZ", 0.99945)

	voxel.ParentTo(voxelForm)
	voxelForm.SetXform(mgl64.Scale3D(0.999, 0.999, 0.999))
	voxelMat.Set("reflectance", bella.Rgba{R: 0, G: 0, B: 0, A: 1})
	voxelForm.Set("material", voxelMat)
}

// addModelToScene materializes one canonical model subgraph: a root xform
// with one instancer per used (material, color) bucket, each carrying a
// flat translation matrix per voxel plus its material node. The subgraph is
// not parented to the world; instances link it in.
func addModelToScene(scene *bella.Scene, model *vmax.Model) *bella.Node {
	canonicalName := strings.TrimSuffix(model.Name, ".vmaxb")
	done := scene.Batch()
	defer done()

	voxelForm := scene.FindNode("vxVoxelXform")
	liqVoxel := scene.FindNode("vxLiqVoxel")
	meshVoxel := scene.FindNode("vxMeshVoxel")

	modelXform := scene.CreateNode("xform", canonicalName)
	modelXform.SetXform(mgl64.Ident4())

	used := model.UsedMaterialsAndColors()
	materials := make([]int, 0, len(used))
	for mat := range used {
		materials = append(materials, mat)
	}
	sort.Ints(materials)

	for _, mat := range materials {
		for _, color := range used[mat] {
			tag := fmt.Sprintf("%sMaterial%dColor%d", canonicalName, mat, color)
			instancer := scene.CreateNode("instancer", tag)
			instancer.SetXform(mgl64.Ident4())
			instancer.ParentTo(modelXform)

			material := scene.CreateNode("quickMaterial",
				fmt.Sprintf("%sMat%dColor%d", canonicalName, mat, color))
			configureMaterial(material, mat, model.Materials[mat], model.Colors[color-1])
			instancer.Set("material", material)

			voxels := model.VoxelsOf(mat, color)
			xforms := make([]mgl32.Mat4, 0, len(voxels))
			for _, v := range voxels {
				xforms = append(xforms, mgl32.Translate3D(float32(v.X), float32(v.Y), float32(v.Z)))
			}
			instancer.SetInstances(xforms)

			if mat == vmax.NumMaterial-1 {
				liqVoxel.ParentTo(instancer)
			} else {
				meshVoxel.ParentTo(instancer)
			}
			if model.Materials[mat].Emission > 0 {
				voxelForm.ParentTo(instancer)
			}
		}
	}
	return modelXform
}

// configureMaterial picks the material class for one (material, color)
// bucket. First matching rule wins: liquid, glass, metal, dielectric,
// emitter, then plastic.
func configureMaterial(node *bella.Node, index int, mat vmax.Material, color vmax.RGBA) {
	switch {
	case index == 7:
		node.Set("type", "liquid")
		node.Set("liquidDepth", 100.0)
		node.Set("ior", 1.11)
	case index == 6 || color.A < 255:
		node.Set("type", "glass")
		node.Set("roughness", mat.Roughness*100)
		node.Set("glassDepth", 200.0)
	case mat.Metalness > 0.1:
		node.Set("type", "metal")
		node.Set("roughness", mat.Roughness*100)
	case mat.Transmission > 0:
		node.Set("type", "dielectric")
		node.Set("transmission", mat.Transmission)
	case mat.Emission > 0:
		node.Set("type", "emitter")
		node.Set("emitterUnit", "radiance")
		node.Set("emitterEnergy", mat.Emission*500)
	default:
		node.Set("type", "plastic")
		node.Set("roughness", mat.Roughness*100)
	}
	// Palette indices are 1-based; the lookup above already subtracted one.
	// RGB converts to linear, alpha is linear already.
	node.Set("color", bella.Rgba{
		R: srgbToLinear(float64(color.R) / 255),
		G: srgbToLinear(float64(color.G) / 255),
		B: srgbToLinear(float64(color.B) / 255),
		A: float64(color.A) / 255,
	})
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// composeTransform expands a position / axis-angle / scale triple into the
// matrix the scene stores. The flat storage below equals the row-major
// scale-rotate-translate product of the source convention: mathgl composes
// T*R*S on column vectors, and its column-major storage reads out as that
// product's transpose.
func composeTransform(t vmax.Transform) mgl64.Mat4 {
	axis := mgl64.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]}
	rot := mgl64.Ident4()
	if axis.Len() > 0 {
		rot = mgl64.HomogRotate3D(t.Rotation[3], axis.Normalize())
	}
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(rot).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// nodeName derives a scene node name from a scene.json identifier: a
// leading underscore plus the id with dashes flattened, keeping UUIDs valid
// as node names.
func nodeName(id string) string {
	return "_" + strings.ReplaceAll(id, "-", "_")
}
