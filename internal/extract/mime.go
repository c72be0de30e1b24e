package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeXLS  = "application/vnd.ms-excel"

	mimeOctetStream = "application/octet-stream"
)

var extensionTypes = map[string]string{
	".pdf":  mimePDF,
	".docx": mimeDOCX,
	".xlsx": mimeXLSX,
	".pptx": mimePPTX,
	".xls":  mimeXLS,
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
}

// DetectContentType returns declared unless it is empty or generic, in which case the
// payload is sniffed and the file extension consulted.
func DetectContentType(declared string, fileName string, data []byte) string {
	clean := baseType(declared)
	if clean != "" && clean != mimeOctetStream {
		return strings.TrimSpace(declared)
	}
	sniffed := mimetype.Detect(data)
	if sniffed != nil && !sniffed.Is(mimeOctetStream) {
		return sniffed.String()
	}
	if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return byExt
	}
	return mimeOctetStream
}

func baseType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := baseType(mimeType)
	switch clean {
	case "application/zip", "application/x-zip-compressed":
	case "", mimeOctetStream:
		clean = baseType(DetectContentType("", fileName, data))
		if clean != "application/zip" {
			return clean
		}
	case "application/msexcel", "application/x-msexcel", "application/x-excel", "application/x-ole-storage":
		return mimeXLS
	default:
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".docx", ".xlsx", ".pptx":
		return extensionTypes[ext]
	default:
		return clean
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		switch name {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return mimeXLSX
		case "ppt/presentation.xml":
			return mimePPTX
		}
	}
	return ""
}

func isTextual(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return false
}
