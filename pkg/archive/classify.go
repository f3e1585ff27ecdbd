package archive

import (
	"path"
	"strings"
)

// ClassifyKind resolves a document's kind at creation time. First match
// wins, evaluated case-insensitively:
//
//  1. authored text (no file attached) is always TEXT;
//  2. an explicit upstream hint of PDF/EPUB/IMAGE is trusted;
//  3. otherwise the source file name's extension decides;
//  4. unknown and text-like extensions default to TEXT.
func ClassifyKind(mode SubmissionMode, hint DocumentKind, fileName string) DocumentKind {
	if mode == ModeText {
		return KindText
	}

	switch hint {
	case KindPDF, KindEPUB, KindImage:
		return hint
	}

	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return KindPDF
	case ".epub":
		return KindEPUB
	case ".jpg", ".jpeg", ".png", ".webp":
		return KindImage
	}

	return KindText
}

// DisplaysAsPDF is the display-time PDF heuristic used by the catalog and
// read views. It is intentionally looser than creation-time
// classification: a stored PDF kind, a blob location containing ".pdf",
// or a title containing "pdf" all render as PDF. The stored kind is never
// changed by this; legacy rows without a reliable kind still present
// correctly.
func DisplaysAsPDF(doc *Document) bool {
	if doc.Kind == KindPDF {
		return true
	}
	if doc.BlobLocation != nil && strings.Contains(strings.ToLower(*doc.BlobLocation), ".pdf") {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Title), "pdf")
}

// displayImageExts accepts .gif, which creation-time classification does
// not; a gif upload is stored as TEXT but still rendered as an image.
var displayImageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// DisplaysAsImage is the display-time image heuristic. Presentation only,
// never persisted.
func DisplaysAsImage(doc *Document) bool {
	if doc.Kind == KindImage {
		return true
	}
	if doc.BlobLocation == nil {
		return false
	}
	loc := strings.ToLower(*doc.BlobLocation)
	for _, ext := range displayImageExts {
		if strings.HasSuffix(loc, ext) {
			return true
		}
	}
	return false
}
