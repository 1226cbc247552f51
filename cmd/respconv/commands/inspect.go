package commands

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/nussjustin/respcodec"
)

// FormatValue renders v in the style of redis-cli.
func FormatValue(v respcodec.Value) string {
	var sb strings.Builder
	writeValue(&sb, v, 0)
	return sb.String()
}

func writeValue(sb *strings.Builder, v respcodec.Value, indent int) {
	if v.IsNull() {
		sb.WriteString("(nil)")
		return
	}

	switch v.Type {
	case respcodec.TypeSimpleString:
		sb.WriteString(string(v.Str))
	case respcodec.TypeSimpleError, respcodec.TypeBulkError:
		sb.WriteString("(error) ")
		sb.Write(v.Str)
	case respcodec.TypeInteger:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case respcodec.TypeBulkString:
		sb.WriteString(strconv.Quote(string(v.Str)))
	case respcodec.TypeVerbatimString:
		sb.WriteString("(verbatim ")
		sb.WriteString(v.Format)
		sb.WriteString(") ")
		sb.WriteString(strconv.Quote(string(v.Str)))
	case respcodec.TypeBoolean:
		if v.Bool {
			sb.WriteString("(true)")
		} else {
			sb.WriteString("(false)")
		}
	case respcodec.TypeDouble:
		sb.WriteString("(double) ")
		sb.WriteString(formatDouble(v.Float))
	case respcodec.TypeBigNumber:
		sb.WriteString("(big number) ")
		sb.Write(v.Str)
	case respcodec.TypeArray, respcodec.TypeSet, respcodec.TypePush:
		writeElems(sb, v, indent)
	case respcodec.TypeMap, respcodec.TypeAttribute:
		writePairs(sb, v, indent)
	default:
		fmt.Fprintf(sb, "(%s)", v.Type)
	}
}

func elemSeparator(t respcodec.Type) string {
	switch t {
	case respcodec.TypeSet:
		return "~"
	case respcodec.TypeMap:
		return "#"
	case respcodec.TypeAttribute:
		return "|"
	default:
		return ")"
	}
}

func writeElems(sb *strings.Builder, v respcodec.Value, indent int) {
	if len(v.Elems) == 0 {
		sb.WriteString("(empty ")
		sb.WriteString(v.Type.String())
		sb.WriteString(")")
		return
	}

	if v.Type == respcodec.TypePush {
		sb.WriteString("(push)\n")
		sb.WriteString(strings.Repeat(" ", indent))
	}

	width := len(strconv.Itoa(len(v.Elems)))
	sep := elemSeparator(v.Type)

	for i, e := range v.Elems {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(" ", indent))
		}
		label := fmt.Sprintf("%*d%s ", width, i+1, sep)
		sb.WriteString(label)
		writeValue(sb, e, indent+len(label))
	}
}

func writePairs(sb *strings.Builder, v respcodec.Value, indent int) {
	if len(v.Pairs) == 0 {
		sb.WriteString("(empty ")
		sb.WriteString(v.Type.String())
		sb.WriteString(")")
		return
	}

	width := len(strconv.Itoa(len(v.Pairs)))
	sep := elemSeparator(v.Type)

	for i, p := range v.Pairs {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(" ", indent))
		}
		label := fmt.Sprintf("%*d%s ", width, i+1, sep)
		sb.WriteString(label)

		var key strings.Builder
		writeValue(&key, p.Key, indent+len(label))
		sb.WriteString(key.String())
		sb.WriteString(" => ")

		// nested values are aligned after the last line of the key
		last := key.String()
		if i := strings.LastIndexByte(last, '\n'); i >= 0 {
			last = last[i+1:]
		} else {
			last = strings.Repeat(" ", indent+len(label)) + last
		}
		writeValue(sb, p.Value, len(last)+len(" => "))
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// RunInspect reads one or more concatenated RESP values from in and writes a redis-cli style rendering of each to
// out, one value per block.
func RunInspect(in io.Reader, out io.Writer, maxDepth int, logger *slog.Logger) error {
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

		logger.Debug("inspecting value", slog.Int("index", n), slog.Int("offset", r.Offset()))

		if _, err := fmt.Fprintln(out, FormatValue(v)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
