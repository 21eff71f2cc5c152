package batch

// Document is an open handle on one input PDF. Each worker opens its own
// handle; handles are never shared between tasks.
type Document interface {
	Path() string
	PageCount() int
	Close() error
}

// Toolkit is the document operation surface the coordinator fans work out
// to. The real implementation wraps the PDF/OCR libraries; tests substitute
// a stub. All methods are synchronous and may block on file or external
// process I/O.
type Toolkit interface {
	// Open opens an input document. A failure is a per-file error, not a
	// batch error.
	Open(path string) (Document, error)

	// Merge combines the inputs, in order, into a single output file.
	Merge(inputs []string, outFile string) error

	// Convert writes doc to outPath in the requested format and returns
	// the produced files (image formats may produce one file per page).
	Convert(doc Document, outPath string, p ConvertParams) ([]string, error)

	// ExtractPages writes the given 1-based pages of doc to outFile.
	ExtractPages(doc Document, pages []int, outFile string) error

	// AddWatermark stamps every page of doc and writes the result to outFile.
	AddWatermark(doc Document, outFile string, p WatermarkParams) error

	// AddPageNumbers stamps page numbers onto doc and writes to outFile.
	AddPageNumbers(doc Document, outFile string, p PageNumberParams) error

	// OCR recognizes doc and writes the result to outFile in p.Format.
	OCR(doc Document, outFile string, p OCRParams) error

	// Optimize rewrites doc with compacted structure and re-encoded images.
	Optimize(doc Document, outFile string, quality int) error

	// Encrypt writes a password-protected copy of doc to outFile.
	Encrypt(doc Document, outFile string, p EncryptParams) error

	// Decrypt writes a cleartext copy of an encrypted doc to outFile.
	Decrypt(doc Document, outFile string, password string) error
}
