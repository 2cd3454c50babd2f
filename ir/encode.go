// Copyright © 2026 The Vize authors

package ir

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeJSON writes doc as indented JSON.
func EncodeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode ir json: %w", err)
	}
	return nil
}

// DecodeJSON reads a Document from JSON. Documents from a different
// schema version are rejected.
func DecodeJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ir json: %w", err)
	}
	if doc.Schema != Schema {
		return nil, fmt.Errorf("ir schema mismatch: document has %d, want %d", doc.Schema, Schema)
	}
	return &doc, nil
}

// EncodeMsgpack writes doc in the compact binary form used by the disk
// cache and the --format=msgpack output.
func EncodeMsgpack(w io.Writer, doc *Document) error {
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode ir msgpack: %w", err)
	}
	return nil
}

// DecodeMsgpack reads a msgpack-encoded Document.
func DecodeMsgpack(r io.Reader) (*Document, error) {
	var doc Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ir msgpack: %w", err)
	}
	if doc.Schema != Schema {
		return nil, fmt.Errorf("ir schema mismatch: document has %d, want %d", doc.Schema, Schema)
	}
	return &doc, nil
}
