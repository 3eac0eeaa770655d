package export

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hiroakis/scanledger/internal/command"
	"github.com/hiroakis/scanledger/internal/model"
)

// resultHeader is the column layout of the exported sheet.
var resultHeader = []string{
	"Store", "Item Code", "Success", "Timestamp", "Name", "Price",
	"Image URL", "Product URL", "Load Time (ms)", "Error", "Retries",
}

// XLSXExporter writes a session's results to a single-sheet workbook.
// Rows are streamed through the result visitor, so memory stays flat
// regardless of session size.
type XLSXExporter struct{}

// NewXLSXExporter creates an XLSXExporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Compile-time check that XLSXExporter implements command.Exporter.
var _ command.Exporter = (*XLSXExporter)(nil)

// Export writes the session's results to path. The path has already
// passed the export gate when called through the dispatcher.
func (e *XLSXExporter) Export(ctx context.Context, session *model.ScanSession, path string, stream command.ResultStream) error {
	f, err := os.Create(path) //nolint:gosec // path was validated by the export gate
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := e.write(ctx, f, session, stream); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to finish export file: %w", err)
	}
	return nil
}

// write assembles the workbook archive.
func (e *XLSXExporter) write(ctx context.Context, w io.Writer, session *model.ScanSession, stream command.ResultStream) error {
	archive := zip.NewWriter(w)

	// Part order is fixed; some readers expect the content types part
	// at the front of the archive.
	static := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"docProps/core.xml", corePropsXML(session)},
		{"xl/workbook.xml", workbookXML},
		{"xl/_rels/workbook.xml.rels", workbookRelsXML},
	}
	for _, p := range static {
		part, err := archive.Create(p.name)
		if err != nil {
			return fmt.Errorf("failed to create archive part %s: %w", p.name, err)
		}
		if _, err := io.WriteString(part, p.content); err != nil {
			return fmt.Errorf("failed to write archive part %s: %w", p.name, err)
		}
	}

	sheet, err := archive.Create("xl/worksheets/sheet1.xml")
	if err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	if err := writeSheet(ctx, sheet, stream); err != nil {
		return err
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize workbook: %w", err)
	}
	return nil
}

// writeSheet streams the worksheet XML: one header row, then one row
// per result in insertion order.
func writeSheet(ctx context.Context, w io.Writer, stream command.ResultStream) error {
	if _, err := io.WriteString(w,
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`); err != nil {
		return err
	}

	if err := writeRow(w, resultHeader); err != nil {
		return err
	}

	visitErr := stream(func(r *model.ScanResult) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return writeRow(w, []string{
			r.Store,
			r.ItemCode,
			strconv.FormatBool(r.Success),
			r.Timestamp.Format(time.RFC3339),
			r.Name,
			r.Price,
			r.ImageURL,
			r.ProductURL,
			strconv.FormatInt(r.LoadTime.Milliseconds(), 10),
			r.ErrorMessage,
			strconv.Itoa(r.RetryCount),
		})
	})
	if visitErr != nil {
		return fmt.Errorf("failed to stream results into sheet: %w", visitErr)
	}

	_, err := io.WriteString(w, `</sheetData></worksheet>`)
	return err
}

// writeRow writes one sheet row with inline-string cells.
func writeRow(w io.Writer, cells []string) error {
	if _, err := io.WriteString(w, "<row>"); err != nil {
		return err
	}
	for _, cell := range cells {
		escaped, err := xmlEscape(cell)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<c t="inlineStr"><is><t>%s</t></is></c>`, escaped); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</row>")
	return err
}

// xmlEscape escapes a cell value for embedding in worksheet XML.
func xmlEscape(s string) ([]byte, error) {
	var buf []byte
	w := &byteWriter{buf: &buf}
	if err := xml.EscapeText(w, []byte(s)); err != nil {
		return nil, err
	}
	return buf, nil
}

// byteWriter is a minimal io.Writer over a byte slice.
type byteWriter struct {
	buf *[]byte
}

// Write implements io.Writer.
func (b *byteWriter) Write(p []byte) (int, error) {
	*b.buf = append(*b.buf, p...)
	return len(p), nil
}

// corePropsXML renders the document properties part.
func corePropsXML(session *model.ScanSession) string {
	title := "Scan results"
	if session != nil {
		title = "Scan results " + session.ID
	}
	escaped, err := xmlEscape(title)
	if err != nil {
		escaped = []byte("Scan results")
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + string(escaped) + `</dc:title>` +
		`<dc:creator>scanledger</dc:creator>` +
		`</cp:coreProperties>`
}

// Static workbook parts.
const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
		`</Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`</Relationships>`

	workbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<sheets><sheet name="Results" sheetId="1" r:id="rId1"/></sheets>` +
		`</workbook>`

	workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`
)
