package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a key that appears twice in one YAML mapping,
// with the positions of both occurrences.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("config: duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func checkDuplicateKeys(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return walkMappings(&root)
}

func walkMappings(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if pos, dup := first[k.Value]; dup {
				return &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
		}
	}
	for _, c := range n.Content {
		if err := walkMappings(c); err != nil {
			return err
		}
	}
	return nil
}
