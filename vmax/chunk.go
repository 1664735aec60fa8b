package vmax

import (
	"errors"
	"fmt"
)

// Snapshot type IDs observed in s.id.t. Informational only; all snapshots
// are applied in array order regardless of type.
const (
	SnapshotUnderRestore = 0
	SnapshotRedoRestore  = 1
	SnapshotUndo         = 2
	SnapshotRedo         = 3
	SnapshotCheckpoint   = 4
	SnapshotSelection    = 5
)

var snapshotTypeNames = map[uint64]string{
	SnapshotUnderRestore: "underRestore",
	SnapshotRedoRestore:  "redoRestore",
	SnapshotUndo:         "undo",
	SnapshotRedo:         "redo",
	SnapshotCheckpoint:   "checkpoint",
	SnapshotSelection:    "selection",
}

// SnapshotTypeName names a s.id.t value for diagnostics.
func SnapshotTypeName(t uint64) string {
	if name, ok := snapshotTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", t)
}

var errSnapshotShape = errors.New("snapshot structure mismatch")

// ChunkInfo is the addressing header of one snapshot: which 32^3 chunk it
// rewrites and where inside that chunk its data stream begins.
type ChunkInfo struct {
	ID         uint16 // morton code of the chunk coordinate, 0-511
	Type       uint64 // snapshot type, see SnapshotTypeName
	MortonBase uint32 // intra-chunk morton offset of the first pair, element [3] of s.st.min
}

// chunkInfoOf extracts s.id.c, s.id.t and s.st.min[3] from one element of
// the snapshots array.
func chunkInfoOf(snapshot any) (ChunkInfo, error) {
	id, ok := treeUint(snapshot, "s", "id", "c")
	if !ok {
		return ChunkInfo{}, fmt.Errorf("%w: missing s.id.c", errSnapshotShape)
	}
	// s.id.c is stored wide but only 512 chunks exist; anything larger
	// would wrap the world coordinates.
	if id >= MaxChunks {
		return ChunkInfo{}, fmt.Errorf("%w: chunk id %d out of range", errSnapshotShape, id)
	}
	typ, ok := treeUint(snapshot, "s", "id", "t")
	if !ok {
		return ChunkInfo{}, fmt.Errorf("%w: missing s.id.t", errSnapshotShape)
	}
	min, ok := treeArray(snapshot, "s", "st", "min")
	if !ok || len(min) < 4 {
		return ChunkInfo{}, fmt.Errorf("%w: s.st.min is not an array of length >= 4", errSnapshotShape)
	}
	base, ok := treeUint(min[3])
	if !ok {
		return ChunkInfo{}, fmt.Errorf("%w: s.st.min[3] is not an integer", errSnapshotShape)
	}
	return ChunkInfo{ID: uint16(id), Type: typ, MortonBase: uint32(base)}, nil
}

// DecodeChunk decodes a voxel data stream into intra-chunk voxels. The
// stream is (material, color) byte pairs; pair i sits at morton code
// i+base. Color 0 marks an absent voxel. A trailing odd byte is ignored and
// a short stream simply yields fewer voxels.
func DecodeChunk(ds []byte, base uint32, chunkID uint16) []Voxel {
	voxels := make([]Voxel, 0, len(ds)/2)
	for i := 0; i+1 < len(ds); i += 2 {
		material, color := ds[i], ds[i+1]
		if color == 0 {
			continue
		}
		x, y, z := DecodeMorton3(uint32(i/2) + base)
		voxels = append(voxels, Voxel{
			X:         uint8(x),
			Y:         uint8(y),
			Z:         uint8(z),
			Material:  material,
			Palette:   color,
			ChunkID:   chunkID,
			MinMorton: uint16(base),
		})
	}
	return voxels
}

// DecodeSnapshots collapses a model's snapshots array into world-space
// voxels bucketed on the model. Snapshots are walked in array order; a later
// snapshot for the same chunk ID fully replaces the earlier one. Snapshots
// with a broken structure are reported through warn and skipped so a partial
// model still decodes.
func DecodeSnapshots(model *Model, snapshots []any, warn func(format string, args ...any)) {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	// Chunk accumulator: last write wins per chunk ID.
	chunks := make(map[uint16][]Voxel)
	order := make([]uint16, 0, len(snapshots))
	for i, snapshot := range snapshots {
		info, err := chunkInfoOf(snapshot)
		if err != nil {
			warn("%s: snapshot %d skipped: %v", model.Name, i, err)
			continue
		}
		ds, ok := treeBytes(snapshot, "s", "ds")
		if !ok {
			warn("%s: snapshot %d skipped: missing s.ds", model.Name, i)
			continue
		}
		if _, seen := chunks[info.ID]; !seen {
			order = append(order, info.ID)
		}
		chunks[info.ID] = DecodeChunk(ds, info.MortonBase, info.ID)
	}
	for _, chunkID := range order {
		cx, cy, cz := DecodeMorton3(uint32(chunkID))
		for _, v := range chunks[chunkID] {
			v.X += uint8(cx * ChunkSize)
			v.Y += uint8(cy * ChunkSize)
			v.Z += uint8(cz * ChunkSize)
			model.AddVoxel(v)
		}
	}
}
