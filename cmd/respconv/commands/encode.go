package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nussjustin/respcodec"
)

// RunEncode reads a single document in the given format from in and writes it to out as RESP.
func RunEncode(in io.Reader, out io.Writer, format string, logger *slog.Logger) error {
	f, err := LookupFormat(format)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	b, err := encodeDocument(f, data)
	if err != nil {
		return err
	}

	logger.Debug("encoded document", slog.String("format", f.Name()), slog.Int("in", len(data)), slog.Int("out", len(b)))

	if _, err := out.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func encodeDocument(f Format, data []byte) ([]byte, error) {
	var doc any
	if err := f.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Name(), err)
	}

	doc, err := Normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Name(), err)
	}

	b, err := respcodec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	return b, nil
}
