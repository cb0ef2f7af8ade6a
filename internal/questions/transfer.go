package questions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codewriterrussian/voc-selftest/internal/backend"
)

// Copy reads the document from src and writes it to dst in the canonical
// encoding. Unlike Load it fails instead of degrading, so a broken source
// never overwrites a good destination.
func Copy(ctx context.Context, src, dst backend.Backend) (map[string]int, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", src.Name(), err)
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}

	out, err := encodeDocument(doc.categories, doc.quarantine)
	if err != nil {
		return nil, err
	}
	if err := dst.Put(ctx, out); err != nil {
		return nil, fmt.Errorf("put to %s: %w", dst.Name(), err)
	}

	counts := make(map[string]int, len(doc.categories))
	for name, qs := range doc.categories {
		counts[name] = len(qs)
	}
	slog.Info("Question document copied",
		"from", src.Name(),
		"to", dst.Name(),
		"categories", len(counts),
		"quarantined", countRaw(doc.quarantine),
	)
	return counts, nil
}
