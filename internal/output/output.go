// Package output serializes appraisal results to JSON, JSONL, or YAML.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the result serialization.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (use json, jsonl, or yaml)", s)
	}
}

// Writer serializes values to one destination. Close flushes buffered data.
type Writer interface {
	Write(v any) error
	Close() error
}

// NewWriter creates a writer for the given format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return &jsonWriter{w: bufio.NewWriter(w)}, nil
	case FormatJSONL:
		return &jsonlWriter{w: bufio.NewWriter(w)}, nil
	case FormatYAML:
		bw := bufio.NewWriter(w)
		enc := yaml.NewEncoder(bw)
		enc.SetIndent(2)
		return &yamlWriter{w: bw, enc: enc}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// jsonWriter pretty-prints each value as an indented JSON document.
type jsonWriter struct {
	w *bufio.Writer
}

func (jw *jsonWriter) Write(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(data); err != nil {
		return err
	}
	return jw.w.WriteByte('\n')
}

func (jw *jsonWriter) Close() error {
	return jw.w.Flush()
}

// jsonlWriter emits one compact JSON value per line.
type jsonlWriter struct {
	w *bufio.Writer
}

func (jw *jsonlWriter) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(data); err != nil {
		return err
	}
	return jw.w.WriteByte('\n')
}

func (jw *jsonlWriter) Close() error {
	return jw.w.Flush()
}

// yamlWriter emits each value as a YAML document.
type yamlWriter struct {
	w   *bufio.Writer
	enc *yaml.Encoder
}

func (yw *yamlWriter) Write(v any) error {
	return yw.enc.Encode(v)
}

func (yw *yamlWriter) Close() error {
	if err := yw.enc.Close(); err != nil {
		return err
	}
	return yw.w.Flush()
}
