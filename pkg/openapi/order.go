package openapi

import (
	"gopkg.in/yaml.v3"
)

// propertyOrder returns the declared property order of every component schema.
// JSON documents are valid YAML, so one decoder serves both.
func propertyOrder(data []byte) map[string][]string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	schemas := child(child(root.Content[0], "components"), "schemas")
	if schemas == nil {
		return nil
	}
	out := make(map[string][]string)
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		props := child(schemas.Content[i+1], "properties")
		if props == nil {
			continue
		}
		names := make([]string, 0, len(props.Content)/2)
		for j := 0; j+1 < len(props.Content); j += 2 {
			names = append(names, props.Content[j].Value)
		}
		out[schemas.Content[i].Value] = names
	}
	return out
}

func child(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
