package vmax

// Model-space constants. A model spans 256^3 voxels split into 8x8x8 chunks
// of 32^3 voxels each.
const (
	ChunkSize   = 32
	GridChunks  = 8
	ModelSize   = ChunkSize * GridChunks
	MaxChunks   = GridChunks * GridChunks * GridChunks
	NumMaterial = 8
	NumColors   = 256
)

// RGBA is one palette entry, 8 bits per component.
type RGBA struct {
	R, G, B, A uint8
}

// Material is one of the eight per-model material records from
// paletteN.settings.vmaxpsb.
type Material struct {
	Name          string
	Transmission  float64
	Roughness     float64
	Metalness     float64
	Emission      float64
	EnableShadows bool
	Dielectric    bool // reserved
	Volumetric    bool // reserved
}

// Voxel is a single occupied cell in model space. Palette index 0 means "no
// voxel" and is never materialized.
type Voxel struct {
	X, Y, Z   uint8
	Material  uint8  // 0-7
	Palette   uint8  // 1-255, index into the model palette
	ChunkID   uint16 // 0-511, morton code of the chunk coordinate
	MinMorton uint16 // 0-32767, intra-chunk morton base offset
}

// Palette is the fixed 256-entry color table read from paletteN.png.
type Palette [NumColors]RGBA

// Model is one decoded contentsN.vmaxb keyed by its file name. Voxels are
// bucketed by (material, color) so the composer can emit one instancer per
// bucket.
type Model struct {
	Name      string
	Voxels    [NumMaterial][NumColors][]Voxel
	Materials [NumMaterial]Material
	Colors    Palette
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVoxel appends a voxel to its (material, color) bucket. Out-of-range
// material and the reserved color 0 are dropped.
func (m *Model) AddVoxel(v Voxel) {
	if v.Material >= NumMaterial || v.Palette == 0 {
		return
	}
	m.Voxels[v.Material][v.Palette] = append(m.Voxels[v.Material][v.Palette], v)
}

// VoxelsOf returns the bucket for one material/color pair.
func (m *Model) VoxelsOf(material, color int) []Voxel {
	if material < 0 || material >= NumMaterial || color <= 0 || color >= NumColors {
		return nil
	}
	return m.Voxels[material][color]
}

// TotalVoxels counts voxels across all buckets.
func (m *Model) TotalVoxels() int {
	count := 0
	for mat := 0; mat < NumMaterial; mat++ {
		for c := 1; c < NumColors; c++ {
			count += len(m.Voxels[mat][c])
		}
	}
	return count
}

// UsedMaterialsAndColors reports the non-empty buckets as an ordered list of
// colors per material index.
func (m *Model) UsedMaterialsAndColors() map[int][]int {
	used := make(map[int][]int)
	for mat := 0; mat < NumMaterial; mat++ {
		for c := 1; c < NumColors; c++ {
			if len(m.Voxels[mat][c]) > 0 {
				used[mat] = append(used[mat], c)
			}
		}
	}
	return used
}

// SetMaterials installs the eight material records parsed from the
// settings tree.
func (m *Model) SetMaterials(mats [NumMaterial]Material) {
	m.Materials = mats
}

// SetColors installs the palette read from paletteN.png.
func (m *Model) SetColors(p Palette) {
	m.Colors = p
}
