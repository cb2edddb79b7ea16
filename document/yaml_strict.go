package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ansel1/merry/v2"
	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a key repeated within one YAML mapping, with the
// positions of both occurrences.
type DuplicateKeyError struct {
	Path      string // JSON Pointer of the mapping holding the key
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: duplicate YAML key %q at %d:%d (first at %d:%d)", e.Path, e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// decodeYAMLStrict decodes the first document through yaml.Node so repeated
// keys can be rejected. Scalars are resolved by yaml.v3 itself, which keeps
// the result identical to DecodeYAML for well-formed input.
func decodeYAMLStrict(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, merry.Errorf("invalid YAML: %w", err)
	}
	return strictNode(&root, "")
}

func strictNode(n *yaml.Node, path string) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return strictNode(n.Content[0], path)
	case yaml.AliasNode:
		return strictNode(n.Alias, path)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string]*yaml.Node, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if prev, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{
					Path: pointerOrRoot(path), Key: k.Value,
					FirstLine: prev.Line, FirstCol: prev.Column,
					Line: k.Line, Col: k.Column,
				}
			}
			first[k.Value] = k
			val, err := strictNode(v, path+"/"+escapePointer(k.Value))
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := strictNode(c, path+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, merry.Errorf("invalid YAML at %d:%d: %w", n.Line, n.Column, err)
		}
		return v, nil
	}
}

func pointerOrRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func escapePointer(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '~':
			b = append(b, '~', '0')
		case '/':
			b = append(b, '~', '1')
		default:
			b = append(b, s[i])
		}
	}
	return string(b)
}
