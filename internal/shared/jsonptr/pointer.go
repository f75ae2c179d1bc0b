// Package jsonptr implements RFC 6901 JSON Pointers over decoded JSON
// trees (map[string]any, []any, scalars).
//
// Resolve never mutates its input. Set and Delete are copy-on-write:
// they return a new tree and leave the original untouched, so callers
// can hold the pre-mutation document for conflict recovery.
package jsonptr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrRootOperation is returned by Set, Delete and Append when the
// pointer addresses the document root. The root cannot be replaced or
// removed through pointer mutation.
var ErrRootOperation = errors.New("operation not supported on document root")

// SyntaxError reports a pointer that is neither empty nor starts with '/'.
type SyntaxError struct {
	Pointer string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("json pointer must be empty or start with '/': %q", e.Pointer)
}

// NotFoundError reports a pointer that does not resolve in the document.
// Pointer always carries the full original pointer string, not the
// failing suffix.
type NotFoundError struct {
	Pointer string
}

func (e *NotFoundError) Error() string {
	return "path not found: " + e.Pointer
}

// unescaper applies the RFC 6901 substitutions in a single pass over the
// raw token, so "~01" becomes "~1" rather than "/".
var unescaper = strings.NewReplacer("~1", "/", "~0", "~")

// Parse splits a pointer into its unescaped reference tokens. The empty
// pointer yields an empty token list (the document root).
func Parse(pointer string) ([]string, error) {
	if pointer == "" {
		return []string{}, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, &SyntaxError{Pointer: pointer}
	}
	parts := strings.Split(pointer[1:], "/")
	tokens := make([]string, len(parts))
	for i, part := range parts {
		tokens[i] = unescaper.Replace(part)
	}
	return tokens, nil
}

// Resolve walks the document along the pointer and returns the value at
// its end. The empty pointer returns the document itself.
func Resolve(document any, pointer string) (any, error) {
	tokens, err := Parse(pointer)
	if err != nil {
		return nil, err
	}
	current := document
	for _, token := range tokens {
		switch node := current.(type) {
		case map[string]any:
			child, ok := node[token]
			if !ok {
				return nil, &NotFoundError{Pointer: pointer}
			}
			current = child
		case []any:
			index, ok := sequenceIndex(token, len(node))
			if !ok {
				return nil, &NotFoundError{Pointer: pointer}
			}
			current = node[index]
		default:
			// Scalar with tokens remaining: nothing to descend into.
			return nil, &NotFoundError{Pointer: pointer}
		}
	}
	return current, nil
}

// Set returns a deep copy of the document with the value placed at the
// pointer. For a map parent the final token may name a new key; for a
// sequence parent it must be an in-bounds index. Missing intermediate
// nodes are not created.
func Set(document any, pointer string, value any) (any, error) {
	tokens, err := Parse(pointer)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrRootOperation
	}
	root := Clone(document)
	if _, err := setTokens(root, tokens, pointer, Clone(value)); err != nil {
		return nil, err
	}
	return root, nil
}

func setTokens(node any, tokens []string, pointer string, value any) (any, error) {
	token := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		if len(tokens) == 1 {
			n[token] = value
			return n, nil
		}
		child, ok := n[token]
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		updated, err := setTokens(child, tokens[1:], pointer, value)
		if err != nil {
			return nil, err
		}
		n[token] = updated
		return n, nil
	case []any:
		index, ok := sequenceIndex(token, len(n))
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		if len(tokens) == 1 {
			n[index] = value
			return n, nil
		}
		updated, err := setTokens(n[index], tokens[1:], pointer, value)
		if err != nil {
			return nil, err
		}
		n[index] = updated
		return n, nil
	default:
		return nil, &NotFoundError{Pointer: pointer}
	}
}

// Delete returns a deep copy of the document with the node at the
// pointer removed. Sequence elements after the removed index shift
// down. Delete does not return the removed value; resolve it first if
// it is needed.
func Delete(document any, pointer string) (any, error) {
	tokens, err := Parse(pointer)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrRootOperation
	}
	root := Clone(document)
	updated, err := deleteTokens(root, tokens, pointer)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func deleteTokens(node any, tokens []string, pointer string) (any, error) {
	token := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[token]
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		if len(tokens) == 1 {
			delete(n, token)
			return n, nil
		}
		updated, err := deleteTokens(child, tokens[1:], pointer)
		if err != nil {
			return nil, err
		}
		n[token] = updated
		return n, nil
	case []any:
		index, ok := sequenceIndex(token, len(n))
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		if len(tokens) == 1 {
			return append(n[:index], n[index+1:]...), nil
		}
		updated, err := deleteTokens(n[index], tokens[1:], pointer)
		if err != nil {
			return nil, err
		}
		n[index] = updated
		return n, nil
	default:
		return nil, &NotFoundError{Pointer: pointer}
	}
}

// Append returns a deep copy of the document with the value appended to
// the sequence at the pointer. The pointer must resolve to a sequence.
func Append(document any, pointer string, value any) (any, error) {
	tokens, err := Parse(pointer)
	if err != nil {
		return nil, err
	}
	root := Clone(document)
	if len(tokens) == 0 {
		seq, ok := root.([]any)
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		return append(seq, Clone(value)), nil
	}
	if _, err := appendTokens(root, tokens, pointer, Clone(value)); err != nil {
		return nil, err
	}
	return root, nil
}

func appendTokens(node any, tokens []string, pointer string, value any) (any, error) {
	token := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[token]
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		if len(tokens) == 1 {
			seq, ok := child.([]any)
			if !ok {
				return nil, &NotFoundError{Pointer: pointer}
			}
			n[token] = append(seq, value)
			return n, nil
		}
		updated, err := appendTokens(child, tokens[1:], pointer, value)
		if err != nil {
			return nil, err
		}
		n[token] = updated
		return n, nil
	case []any:
		index, ok := sequenceIndex(token, len(n))
		if !ok {
			return nil, &NotFoundError{Pointer: pointer}
		}
		if len(tokens) == 1 {
			seq, ok := n[index].([]any)
			if !ok {
				return nil, &NotFoundError{Pointer: pointer}
			}
			n[index] = append(seq, value)
			return n, nil
		}
		updated, err := appendTokens(n[index], tokens[1:], pointer, value)
		if err != nil {
			return nil, err
		}
		n[index] = updated
		return n, nil
	default:
		return nil, &NotFoundError{Pointer: pointer}
	}
}

// Clone deep-copies a decoded JSON tree. Scalars are returned as-is.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// sequenceIndex parses a token as a non-negative in-bounds index.
// Negative values and anything strconv rejects are invalid.
func sequenceIndex(token string, length int) (int, bool) {
	index, err := strconv.Atoi(token)
	if err != nil || index < 0 || index >= length {
		return 0, false
	}
	return index, true
}
