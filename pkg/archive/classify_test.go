package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archivehub/archive-hub/pkg/archive"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name     string
		mode     archive.SubmissionMode
		hint     archive.DocumentKind
		fileName string
		expected archive.DocumentKind
	}{
		{
			name:     "authored text is always TEXT",
			mode:     archive.ModeText,
			hint:     archive.KindPDF,
			fileName: "notes.pdf",
			expected: archive.KindText,
		},
		{
			name:     "binary hint is trusted over extension",
			mode:     archive.ModeFile,
			hint:     archive.KindEPUB,
			fileName: "book.pdf",
			expected: archive.KindEPUB,
		},
		{
			name:     "pdf extension",
			mode:     archive.ModeFile,
			fileName: "report.pdf",
			expected: archive.KindPDF,
		},
		{
			name:     "extension match is case insensitive",
			mode:     archive.ModeFile,
			fileName: "REPORT.PDF",
			expected: archive.KindPDF,
		},
		{
			name:     "epub extension",
			mode:     archive.ModeFile,
			fileName: "notes.epub",
			expected: archive.KindEPUB,
		},
		{
			name:     "jpeg extension",
			mode:     archive.ModeFile,
			fileName: "photo.JPEG",
			expected: archive.KindImage,
		},
		{
			name:     "webp extension",
			mode:     archive.ModeFile,
			fileName: "sticker.webp",
			expected: archive.KindImage,
		},
		{
			name:     "gif is not an image at creation time",
			mode:     archive.ModeFile,
			fileName: "anim.gif",
			expected: archive.KindText,
		},
		{
			name:     "unknown extension defaults to TEXT",
			mode:     archive.ModeFile,
			fileName: "data.xyz",
			expected: archive.KindText,
		},
		{
			name:     "no file name defaults to TEXT",
			mode:     archive.ModeFile,
			expected: archive.KindText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, archive.ClassifyKind(tt.mode, tt.hint, tt.fileName))
		})
	}
}

func strPtr(s string) *string { return &s }

func TestDisplaysAsPDF(t *testing.T) {
	tests := []struct {
		name     string
		doc      archive.Document
		expected bool
	}{
		{
			name:     "stored pdf kind",
			doc:      archive.Document{Kind: archive.KindPDF, Title: "Report"},
			expected: true,
		},
		{
			name:     "location containing .pdf",
			doc:      archive.Document{Kind: archive.KindText, Title: "Report", BlobLocation: strPtr("https://cdn.example.com/x/report.pdf?dl=1")},
			expected: true,
		},
		{
			name:     "title containing pdf",
			doc:      archive.Document{Kind: archive.KindText, Title: "Scanned PDF of notes"},
			expected: true,
		},
		{
			name:     "plain text document",
			doc:      archive.Document{Kind: archive.KindText, Title: "Notes"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, archive.DisplaysAsPDF(&tt.doc))
		})
	}
}

func TestDisplaysAsImage(t *testing.T) {
	tests := []struct {
		name     string
		doc      archive.Document
		expected bool
	}{
		{
			name:     "stored image kind",
			doc:      archive.Document{Kind: archive.KindImage},
			expected: true,
		},
		{
			name:     "gif location displays as image despite TEXT kind",
			doc:      archive.Document{Kind: archive.KindText, BlobLocation: strPtr("https://cdn.example.com/anim.gif")},
			expected: true,
		},
		{
			name:     "png location",
			doc:      archive.Document{Kind: archive.KindText, BlobLocation: strPtr("https://cdn.example.com/shot.PNG")},
			expected: true,
		},
		{
			name:     "no blob location",
			doc:      archive.Document{Kind: archive.KindText},
			expected: false,
		},
		{
			name:     "non image location",
			doc:      archive.Document{Kind: archive.KindText, BlobLocation: strPtr("https://cdn.example.com/notes.txt")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, archive.DisplaysAsImage(&tt.doc))
		})
	}
}

func TestSortKeyNormalize(t *testing.T) {
	assert.Equal(t, archive.SortOldest, archive.SortKey("oldest").Normalize())
	assert.Equal(t, archive.SortNewest, archive.SortKey("").Normalize())
	assert.Equal(t, archive.SortNewest, archive.SortKey("bogus").Normalize())
	assert.Equal(t, archive.SortTitleDesc, archive.SortTitleDesc.Normalize())
}
