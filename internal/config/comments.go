package config

import (
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommentedYAML renders c as YAML with each key annotated from its
// yamlcomment struct tag. Sections get a head comment, scalars a line comment.
func (c Config) CommentedYAML() ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(c); err != nil {
		return nil, err
	}
	annotate(&node, reflect.TypeOf(c))
	return yaml.Marshal(&node)
}

func annotate(n *yaml.Node, t reflect.Type) {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n.Kind != yaml.MappingNode || t.Kind() != reflect.Struct {
		return
	}

	fields := make(map[string]reflect.StructField, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		f, ok := fields[key.Value]
		if !ok {
			continue
		}
		if comment := f.Tag.Get("yamlcomment"); comment != "" {
			if val.Kind == yaml.MappingNode {
				key.HeadComment = comment
			} else {
				key.LineComment = comment
			}
		}
		annotate(val, f.Type)
	}
}
