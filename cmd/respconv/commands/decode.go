package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nussjustin/respcodec"
)

// RunDecode reads one or more concatenated RESP values from in and writes each of them to out as a document in the
// given format. Documents in text formats are separated by a newline (JSON) or a "---" line (YAML).
func RunDecode(in io.Reader, out io.Writer, format string, maxDepth int, logger *slog.Logger) error {
	f, err := LookupFormat(format)
	if err != nil {
		return err
	}

	dm, err := respcodec.DecOptions{MaxNestedLevels: maxDepth}.DecMode()
	if err != nil {
		return err
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	r := respcodec.NewReader(data)
	r.SetMaxNestedLevels(maxDepth)

	for n := 0; r.Len() > 0; n++ {
		v, err := r.ReadValue()
		if err != nil {
			return fmt.Errorf("failed to read value %d: %w", n, err)
		}

		logger.Debug("decoded value", slog.Int("index", n), slog.String("type", v.Type.String()))

		b, err := decodeDocument(f, dm, v)
		if err != nil {
			return fmt.Errorf("failed to convert value %d: %w", n, err)
		}

		if n > 0 && f.Name() == (YAML{}).Name() {
			b = append([]byte("---\n"), b...)
		}
		if f.Name() == (JSON{}).Name() {
			b = append(b, '\n')
		}

		if _, err := out.Write(b); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func decodeDocument(f Format, dm respcodec.DecMode, v respcodec.Value) ([]byte, error) {
	var doc any
	if err := dm.UnmarshalValue(v, &doc); err != nil {
		return nil, err
	}
	return f.Marshal(Document(doc))
}
