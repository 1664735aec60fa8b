package bella

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/klauspost/compress/zip"
)

// formatVersion is stamped into the header so readers can reject archives
// written by a newer serializer.
const formatVersion = 1

// WriteText serializes the scene as the text form of the archive. Nodes are
// emitted in creation order, attributes in assignment order, so output is
// deterministic for a given build sequence.
func (s *Scene) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# bella scene\nversion %d;\n", formatVersion)
	for _, n := range s.Nodes() {
		fmt.Fprintf(bw, "\n%s %s {\n", n.Type, n.Name)
		for _, key := range n.attrKeys {
			fmt.Fprintf(bw, "  %s = %s;\n", key, formatValue(n.attrs[key]))
		}
		if len(n.children) > 0 {
			names := make([]string, len(n.children))
			for i, c := range n.children {
				names[i] = c.Name
			}
			fmt.Fprintf(bw, "  children = [ %s ];\n", strings.Join(names, " "))
		}
		fmt.Fprint(bw, "}\n")
	}
	return bw.Flush()
}

// Write stores the scene at path as a zip archive holding the text form
// under the same base name with a .bsa extension.
func (s *Scene) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entry, err := zw.Create(base + ".bsa")
	if err == nil {
		err = s.WriteText(entry)
	}
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write scene %s: %w", path, err)
	}
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case float32:
		return fmt.Sprintf("%g", val)
	case Vec2:
		return fmt.Sprintf("vec2(%g %g)", val.X, val.Y)
	case Rgba:
		return fmt.Sprintf("rgba(%g %g %g %g)", val.R, val.G, val.B, val.A)
	case mgl64.Mat4:
		return formatMat4(val[:])
	case []mgl32.Mat4:
		var sb strings.Builder
		sb.WriteString("[ ")
		for i, m := range val {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(formatMat4f(m[:]))
		}
		sb.WriteString(" ]")
		return sb.String()
	case *Node:
		if !val.Valid() {
			return "null"
		}
		return val.Name
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatMat4(m []float64) string {
	parts := make([]string, len(m))
	for i, f := range m {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "mat4(" + strings.Join(parts, " ") + ")"
}

func formatMat4f(m []float32) string {
	parts := make([]string, len(m))
	for i, f := range m {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "mat4f(" + strings.Join(parts, " ") + ")"
}
