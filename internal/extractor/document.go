package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Raw text recovery from the two supported document formats. This is
// deliberately thin: the interview core only needs enough text for the
// contact heuristics.

const maxDocumentBytes = 10 << 20

// pdfText shells out to pdftotext (poppler-utils), reading the
// document from stdin and writing plain text to stdout.
func pdfText(ctx context.Context, r io.Reader) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-", "-")
	cmd.Stdin = io.LimitReader(r, maxDocumentBytes)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext (install poppler-utils): %w", err)
	}
	return string(out), nil
}

// docxText pulls the text runs out of word/document.xml inside the
// docx zip container.
func docxText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes))
	if err != nil {
		return "", err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a docx container: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return textFromDocumentXML(rc)
	}
	return "", fmt.Errorf("docx container has no word/document.xml")
}

func textFromDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			// paragraph boundaries become whitespace so regexes do
			// not run words together
			if t.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}
