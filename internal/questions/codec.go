package questions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
)

// document is the persisted shape: {"categories": {name: [question...]}}.
type document struct {
	Categories map[string][]json.RawMessage `json:"categories"`
}

// rejected is a stored record that failed to decode.
type rejected struct {
	Index int
	Raw   json.RawMessage
	Err   error
}

// decoded is the result of parsing a document.
type decoded struct {
	categories map[string][]domain.Question
	quarantine map[string][]json.RawMessage
	rejected   map[string][]rejected
}

// decodeDocument parses raw record by record. Malformed records are kept in
// quarantine instead of failing the whole document.
func decodeDocument(raw []byte) (decoded, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return decoded{}, fmt.Errorf("decode document: %w", err)
	}

	out := decoded{
		categories: make(map[string][]domain.Question, len(doc.Categories)),
		quarantine: make(map[string][]json.RawMessage),
		rejected:   make(map[string][]rejected),
	}
	for name, records := range doc.Categories {
		qs := make([]domain.Question, 0, len(records))
		for i, rec := range records {
			q, err := domain.DecodeQuestion(rec)
			if err != nil {
				out.quarantine[name] = append(out.quarantine[name], rec)
				out.rejected[name] = append(out.rejected[name], rejected{Index: i, Raw: rec, Err: err})
				continue
			}
			qs = append(qs, q)
		}
		out.categories[name] = qs
	}
	return out, nil
}

// encodeDocument renders categories plus any quarantined records. Output uses
// a 4-space indent and leaves non-ASCII text and HTML characters unescaped.
func encodeDocument(categories map[string][]domain.Question, quarantine map[string][]json.RawMessage) ([]byte, error) {
	doc := document{Categories: make(map[string][]json.RawMessage, len(categories))}

	for name, qs := range categories {
		records := make([]json.RawMessage, 0, len(qs)+len(quarantine[name]))
		for _, q := range qs {
			b, err := marshalNoEscape(q)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
			records = append(records, b)
		}
		records = append(records, quarantine[name]...)
		doc.Categories[name] = records
	}
	// Quarantined records of a category that no longer exists are still written back.
	for name, raw := range quarantine {
		if _, ok := doc.Categories[name]; !ok {
			doc.Categories[name] = append([]json.RawMessage(nil), raw...)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
