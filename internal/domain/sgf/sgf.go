package sgf

import (
	"fmt"
	"strings"
)

// GameTree is one tree in an SGF file: a node sequence plus variations.
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node is a single SGF node, a bag of properties such as B[pd], W[dd], C[...].
// Properties may repeat their values (AB[aa][bb]).
type Node struct {
	Properties map[string][]string
}

// SGF is the root element of an SGF file.
type SGF struct {
	Root *GameTree
}

// orderedKeys fixes the property output order so that serialization is
// reproducible across runs.
var orderedKeys = []string{"FF", "GM", "SZ", "PB", "PW", "DT", "RE", "KM", "HA", "AB", "RU", "TM", "OT", "C", "B", "W", "BL", "WL"}

// Serialize renders the SGF text form.
func Serialize(s *SGF) string {
	var builder strings.Builder
	builder.WriteString("(")
	serializeGameTree(&builder, s.Root)
	builder.WriteString(")")
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")

		used := make(map[string]bool)
		for _, key := range orderedKeys {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				writeProperty(builder, key, values)
			}
		}
		for key, values := range node.Properties {
			if !used[key] {
				writeProperty(builder, key, values)
			}
		}
	}

	for _, child := range tree.Children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

func writeProperty(builder *strings.Builder, key string, values []string) {
	builder.WriteString(key)
	for _, v := range values {
		builder.WriteString(fmt.Sprintf("[%s]", escapeValue(v)))
	}
}

func escapeValue(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	return strings.ReplaceAll(v, "]", "\\]")
}
