package vmax

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Transform is the raw transform triple carried by groups and objects:
// position, axis-angle rotation (axis x/y/z + angle) and scale.
type Transform struct {
	Position [3]float64
	Rotation [4]float64
	Scale    [3]float64
}

// IdentityTransform is the default when scene.json omits transform arrays.
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float64{0, 1, 0, 0},
		Scale:    [3]float64{1, 1, 1},
	}
}

// Extent is the advisory bounding info (center, min, max).
type Extent struct {
	Center [3]float64
	Min    [3]float64
	Max    [3]float64
}

// Group is one entry of the scene.json groups array.
type Group struct {
	ID       string
	ParentID string
	Name     string
	Xform    Transform
	Extent   Extent
	Selected bool
}

// Object is one entry of the scene.json objects array: an instance of a
// model artifact with its own transform.
type Object struct {
	ID          string
	ParentID    string
	Name        string
	DataFile    string // contentsN.vmaxb
	PaletteFile string // paletteN.png
	HistoryFile string // opaque, kept for round-trip
	Xform       Transform
	Extent      Extent
}

// SceneDoc is a parsed scene.json: groups and objects keyed by identifier.
// Parent references may point forward; empty parent means the root.
type SceneDoc struct {
	Groups  map[string]Group
	Objects map[string]Object
}

// ModelInstances groups objects by their model artifact name so the
// composer materializes each unique model once. Keys iterate in no
// particular order; instance slices keep scene.json order.
func (d *SceneDoc) ModelInstances() map[string][]Object {
	byModel := make(map[string][]Object)
	for _, obj := range d.Objects {
		byModel[obj.DataFile] = append(byModel[obj.DataFile], obj)
	}
	return byModel
}

// Shape-level validation of scene.json. Violations are diagnostics, not
// errors: individual elements are still parsed leniently below.
var sceneSchema = jsonschema.MustCompileString("scene.schema.json", `{
	"type": "object",
	"properties": {
		"groups": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {
					"id": {"type": "string"},
					"pid": {"type": "string"},
					"t_p": {"type": "array", "minItems": 3},
					"t_r": {"type": "array", "minItems": 4},
					"t_s": {"type": "array", "minItems": 3}
				}
			}
		},
		"objects": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "data"],
				"properties": {
					"id": {"type": "string"},
					"pid": {"type": "string"},
					"data": {"type": "string"},
					"pal": {"type": "string"},
					"t_p": {"type": "array", "minItems": 3},
					"t_r": {"type": "array", "minItems": 4},
					"t_s": {"type": "array", "minItems": 3}
				}
			}
		}
	}
}`)

// rawNode carries the fields shared by groups and objects. Unknown keys are
// ignored so editor versions can add fields freely.
type rawNode struct {
	ID       string    `json:"id"`
	ParentID string    `json:"pid"`
	N        string    `json:"n"`
	Name     string    `json:"name"`
	Data     string    `json:"data"`
	Pal      string    `json:"pal"`
	Hist     string    `json:"hist"`
	Pos      []float64 `json:"t_p"`
	Rot      []float64 `json:"t_r"`
	Scl      []float64 `json:"t_s"`
	ExtC     []float64 `json:"e_c"`
	ExtMin   []float64 `json:"e_mi"`
	ExtMax   []float64 `json:"e_ma"`
	Selected bool      `json:"s"`
}

func (r *rawNode) displayName() string {
	if r.N != "" {
		return r.N
	}
	return r.Name
}

func (r *rawNode) transform() Transform {
	t := IdentityTransform()
	copyN(t.Position[:], r.Pos)
	copyN(t.Rotation[:], r.Rot)
	copyN(t.Scale[:], r.Scl)
	return t
}

func (r *rawNode) extent() Extent {
	var e Extent
	copyN(e.Center[:], r.ExtC)
	copyN(e.Min[:], r.ExtMin)
	copyN(e.Max[:], r.ExtMax)
	return e
}

func copyN(dst, src []float64) {
	if len(src) >= len(dst) {
		copy(dst, src[:len(dst)])
	}
}

// ParseScene reads and parses a scene.json document. Absent arrays yield
// empty collections. Malformed elements are skipped with a diagnostic; only
// an unreadable or undecodable file is an error.
func ParseScene(path string, warn func(format string, args ...any)) (*SceneDoc, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetMissing, path)
		}
		return nil, err
	}
	var top struct {
		Groups  []json.RawMessage `json:"groups"`
		Objects []json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var shape any
	if err := json.Unmarshal(raw, &shape); err == nil {
		if err := sceneSchema.Validate(shape); err != nil {
			warn("%s: schema violation: %v", path, err)
		}
	}

	doc := &SceneDoc{
		Groups:  make(map[string]Group, len(top.Groups)),
		Objects: make(map[string]Object, len(top.Objects)),
	}
	for i, msg := range top.Groups {
		var r rawNode
		if err := json.Unmarshal(msg, &r); err != nil {
			warn("%s: group %d skipped: %v", path, i, err)
			continue
		}
		if !validNodeID(r.ID) {
			warn("%s: group %d skipped: bad id %q", path, i, r.ID)
			continue
		}
		doc.Groups[r.ID] = Group{
			ID:       r.ID,
			ParentID: r.ParentID,
			Name:     r.displayName(),
			Xform:    r.transform(),
			Extent:   r.extent(),
			Selected: r.Selected,
		}
	}
	for i, msg := range top.Objects {
		var r rawNode
		if err := json.Unmarshal(msg, &r); err != nil {
			warn("%s: object %d skipped: %v", path, i, err)
			continue
		}
		if !validNodeID(r.ID) {
			warn("%s: object %d skipped: bad id %q", path, i, r.ID)
			continue
		}
		if r.Data == "" {
			warn("%s: object %d (%s) skipped: no model artifact", path, i, r.ID)
			continue
		}
		doc.Objects[r.ID] = Object{
			ID:          r.ID,
			ParentID:    r.ParentID,
			Name:        r.displayName(),
			DataFile:    r.Data,
			PaletteFile: r.Pal,
			HistoryFile: r.Hist,
			Xform:       r.transform(),
			Extent:      r.extent(),
		}
	}
	return doc, nil
}

// validNodeID accepts the editor's UUID identifiers plus any other
// non-empty token (hand-written test scenes use short ids).
func validNodeID(id string) bool {
	if id == "" {
		return false
	}
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	return len(id) <= 64
}
