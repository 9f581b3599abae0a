// Package pdftext converts fetched full-text documents into plain text
// for keyword classification. Upstream serves plenty of scanned or
// otherwise unreadable PDFs, so decode failure is an expected outcome,
// not an error condition: callers substitute empty text and move on.
package pdftext

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// Extract decodes a PDF payload into plain text. The payload is staged
// in a temporary file that is always deleted before returning, decode
// failure included.
func Extract(payload []byte) (string, error) {
	tmp, err := os.CreateTemp("", "raspador-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	_, err = tmp.Write(payload)
	if err != nil {
		return "", err
	}

	return readText(tmp.Name())
}

// the pdf library panics on some malformed documents, keep that
// contained here as a regular error return.
func readText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	_, err = buf.ReadFrom(plain)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
