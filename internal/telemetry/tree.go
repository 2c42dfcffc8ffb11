package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"codeberg.org/mutker/lhmoled/internal/errors"
)

// Kind is the variant of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Node is a decoded JSON value. Object members keep document order, which
// decides ties during extraction.
type Node struct {
	Kind    Kind
	Members []Member
	Items   []*Node
	// Scalar holds a string, json.Number, bool or nil.
	Scalar any
}

// Get returns the value of key on an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (n *Node) set(key string, value *Node) {
	for i := range n.Members {
		if n.Members[i].Key == key {
			n.Members[i].Value = value
			return
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
}

// Text renders a non-null scalar as text. Containers and null have no text.
func (n *Node) Text() (string, bool) {
	if n == nil || n.Kind != KindScalar {
		return "", false
	}
	switch v := n.Scalar.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// Walk visits n and every node below it depth-first. A node is visited
// before its children; object members and array items are visited in
// document order.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch n.Kind {
	case KindObject:
		for _, m := range n.Members {
			Walk(m.Value, visit)
		}
	case KindArray:
		for _, item := range n.Items {
			Walk(item, visit)
		}
	}
}

// Decode parses a JSON document into a Node tree. A key repeated within one
// object keeps the position of its first occurrence and the value of its
// last; shadowed values are dropped and never walked.
func Decode(data []byte) (*Node, error) {
	errFactory := errors.New()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, errFactory.Wrap(ErrDecodeFailed, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errFactory.WithData(ErrDecodeFailed, "trailing data after document")
	}

	return root, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return &Node{Kind: KindScalar, Scalar: tok}, nil
	}

	switch delim {
	case '{':
		node := &Node{Kind: KindObject}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			node.set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return node, nil
	case '[':
		node := &Node{Kind: KindArray}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
	}
}
