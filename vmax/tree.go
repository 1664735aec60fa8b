package vmax

import (
	"errors"
	"fmt"
	"os"

	lzfse "github.com/blacktop/lzfse-cgo"
	"howett.net/plist"
)

// Error kinds for the archive layer. Per-model readers wrap these so callers
// can distinguish a missing asset from a corrupt one.
var (
	ErrDecompress   = errors.New("lzfse decompress failed")
	ErrTreeParse    = errors.New("key-value tree parse failed")
	ErrAssetMissing = errors.New("asset missing")
)

// Decompress inflates an LZFSE frame. The codec manages its own output
// buffer growth; a zero-length result after growth exhaustion is a failure.
func Decompress(in []byte) ([]byte, error) {
	out := lzfse.DecodeBuffer(in)
	if len(out) == 0 {
		return nil, ErrDecompress
	}
	return out, nil
}

// ReadTree reads a key-value tree file and returns its root dictionary.
// contentsN.vmaxb files are LZFSE compressed; paletteN.settings.vmaxpsb
// files are raw.
func ReadTree(path string, compressed bool) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetMissing, path)
		}
		return nil, err
	}
	if compressed {
		if raw, err = Decompress(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	var root any
	if _, err := plist.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrTreeParse, err)
	}
	dict, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: root is not a dictionary", path, ErrTreeParse)
	}
	return dict, nil
}

// treeGet walks nested dictionaries along path.
func treeGet(node any, path ...string) (any, bool) {
	cur := node
	for _, key := range path {
		dict, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = dict[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func treeArray(node any, path ...string) ([]any, bool) {
	v, ok := treeGet(node, path...)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

func treeBytes(node any, path ...string) ([]byte, bool) {
	v, ok := treeGet(node, path...)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// treeUint coerces the integer representations the plist decoder may
// produce for int64-typed nodes.
func treeUint(node any, path ...string) (uint64, bool) {
	v, ok := treeGet(node, path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func treeFloat(node any, path ...string) (float64, bool) {
	v, ok := treeGet(node, path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func treeString(node any, path ...string) (string, bool) {
	v, ok := treeGet(node, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func treeBool(node any, path ...string) (bool, bool) {
	v, ok := treeGet(node, path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
