package opf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"govyu/internal/faults"
	"govyu/internal/logging"
	"govyu/internal/sheet"
	"govyu/internal/timestamp"
)

const maxLineBytes = 16 << 20

var (
	versionLine = regexp.MustCompile(`^#(\d+)$`)
	headerLine  = regexp.MustCompile(`^(` + sheet.NamePattern + `)\s\((.*)\)-(.*)$`)
	cellLine    = regexp.MustCompile(`^(\d{2,}:\d{2}:\d{2}:\d{3}),(\d{2,}:\d{2}:\d{2}:\d{3}),\((.*)\)$`)
)

// Document is the result of decoding a db member.
type Document struct {
	Sheet *sheet.Spreadsheet
	// Version is the value of the "#n" marker, or 0 when absent.
	Version int
	// Skipped lists lines that matched no known form, headers whose code list
	// was rejected, and the cell lines that followed a rejected header.
	Skipped []LineError
	// ArityMismatches counts cell lines whose value count differed from the
	// column's code count.
	ArityMismatches int
	// ClampedOffsets counts cells whose offset preceded the onset.
	ClampedOffsets int
}

// LineError describes a db line that could not be classified.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

type decoder struct {
	doc     *Document
	logger  *slog.Logger
	col     *sheet.Column
	ordinal int
	// rejected is set while the cells below a rejected header are skipped.
	rejected bool
}

// Decode parses db member text into a Document. Unrecognized lines are
// recorded on the Document rather than failing the decode. A header with an
// unusable code list is skipped together with its cells. A cell line before
// any column header or a repeated column name is an error.
func Decode(r io.Reader, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &decoder{
		doc:    &Document{Sheet: sheet.NewSpreadsheet("")},
		logger: logger,
	}

	scanner := bufio.NewScanner(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := d.line(lineNum, strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "opf", "decode", "read db member", err)
	}
	return d.doc, nil
}

func (d *decoder) line(num int, text string) error {
	if text == "" {
		return nil
	}
	if m := versionLine.FindStringSubmatch(text); m != nil {
		version, err := strconv.Atoi(m[1])
		if err != nil {
			d.skip(num, text, err)
			return nil
		}
		d.doc.Version = version
		return nil
	}
	if m := headerLine.FindStringSubmatch(text); m != nil {
		return d.header(num, text, m[1], m[3])
	}
	if m := cellLine.FindStringSubmatch(text); m != nil {
		return d.cell(num, text, m[1], m[2], m[3])
	}
	d.skip(num, text, errors.New("unrecognized line"))
	return nil
}

func (d *decoder) header(num int, text, name, declared string) error {
	var codes []string
	if strings.TrimSpace(declared) != "" {
		for _, decl := range strings.Split(declared, ",") {
			code, _, _ := strings.Cut(decl, "|")
			codes = append(codes, strings.TrimSpace(code))
		}
	}
	col, err := sheet.NewColumn(name, codes...)
	if err != nil {
		d.skip(num, text, err)
		d.col = nil
		d.rejected = true
		return nil
	}
	if err := d.doc.Sheet.AddColumn(col); err != nil {
		return fmt.Errorf("line %d: %w", num, err)
	}
	d.col = col
	d.rejected = false
	d.ordinal = 1
	d.logger.Debug("column header",
		logging.String(logging.FieldColumn, name),
		logging.Int("codes", len(codes)),
		logging.Int(logging.FieldLine, num),
	)
	return nil
}

func (d *decoder) cell(num int, text, onsetText, offsetText, body string) error {
	if d.rejected {
		d.skip(num, text, errors.New("column header was rejected"))
		return nil
	}
	if d.col == nil {
		return faults.Wrap(faults.ErrStructure, "opf", "decode",
			fmt.Sprintf("line %d: cell before any column header", num), nil)
	}
	onset, err := timestamp.Parse(onsetText)
	if err != nil {
		d.skip(num, text, err)
		return nil
	}
	offset, err := timestamp.Parse(offsetText)
	if err != nil {
		d.skip(num, text, err)
		return nil
	}
	if offset < onset {
		d.doc.ClampedOffsets++
		d.logger.Debug("offset before onset raised to onset",
			logging.String(logging.FieldColumn, d.col.Name),
			logging.Int(logging.FieldLine, num),
		)
	}

	values := splitValues(body)
	if len(values) > 0 && len(values) != len(d.col.Codes()) {
		d.doc.ArityMismatches++
		d.logger.Debug("cell value count differs from code count",
			logging.String(logging.FieldColumn, d.col.Name),
			logging.Int(logging.FieldLine, num),
			logging.Int("values", len(values)),
			logging.Int("codes", len(d.col.Codes())),
		)
	}
	d.col.NewCell(d.ordinal, onset, offset, values...)
	d.ordinal++
	return nil
}

func (d *decoder) skip(num int, text string, cause error) {
	lineErr := LineError{
		Line: num,
		Text: text,
		Err:  faults.Wrap(faults.ErrFormat, "opf", "decode", "skip line", cause),
	}
	d.doc.Skipped = append(d.doc.Skipped, lineErr)
	logging.WarnWithContext(d.logger, "skipping unparseable line", "opf_line_skipped",
		logging.Int(logging.FieldLine, num),
		logging.String("text", text),
		logging.Error(cause),
		logging.String(logging.FieldImpact, "line ignored; remaining cells still loaded"),
	)
}

// splitValues splits a cell body on unescaped commas and undoes the escapes
// written by escapeValue: `\,` becomes a comma and `\\` a backslash. Any other
// backslash is kept as is. An empty body yields no values.
func splitValues(body string) []string {
	if body == "" {
		return nil
	}
	var values []string
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && (body[i+1] == ',' || body[i+1] == '\\'):
			i++
			b.WriteByte(body[i])
		case c == ',':
			values = append(values, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(values, b.String())
}
