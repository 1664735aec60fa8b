package vmax

// ReadMaterials extracts the eight material records from a settings tree
// (paletteN.settings.vmaxpsb). Records are index-aligned with the source
// array. Missing fields default to zero values except shadows, which default
// on; a missing or malformed materials array yields all defaults.
func ReadMaterials(root map[string]any, warn func(format string, args ...any)) [NumMaterial]Material {
	var materials [NumMaterial]Material
	for i := range materials {
		materials[i].EnableShadows = true
	}
	items, ok := treeArray(root, "materials")
	if !ok {
		if warn != nil {
			warn("settings tree has no materials array")
		}
		return materials
	}
	for i, item := range items {
		if i >= NumMaterial {
			break
		}
		if _, ok := item.(map[string]any); !ok {
			if warn != nil {
				warn("material %d is not a dictionary, using defaults", i)
			}
			continue
		}
		if name, ok := treeString(item, "mi"); ok {
			materials[i].Name = name
		}
		if v, ok := treeFloat(item, "tc"); ok {
			materials[i].Transmission = v
		}
		if v, ok := treeFloat(item, "sic"); ok {
			materials[i].Emission = v
		}
		if v, ok := treeFloat(item, "rc"); ok {
			materials[i].Roughness = v
		}
		if v, ok := treeFloat(item, "mc"); ok {
			materials[i].Metalness = v
		}
		if v, ok := treeBool(item, "sh"); ok {
			materials[i].EnableShadows = v
		}
	}
	return materials
}
