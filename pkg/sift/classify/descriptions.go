package classify

// descriptions maps MIME types to the short description used as the
// primary label. text/plain is handled separately.
var descriptions = map[string]string{
	"application/octet-stream": "data",

	// documents
	"application/pdf":               "PDF document",
	"application/postscript":        "PostScript document",
	"application/rtf":               "Rich Text Format data",
	"application/msword":            "Composite Document File V2 Document",
	"application/vnd.ms-excel":      "Composite Document File V2 Document",
	"application/vnd.ms-powerpoint": "Composite Document File V2 Document",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "Microsoft Word 2007+",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "Microsoft Excel 2007+",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "Microsoft PowerPoint 2007+",

	"application/vnd.oasis.opendocument.text":        "OpenDocument Text",
	"application/vnd.oasis.opendocument.spreadsheet": "OpenDocument Spreadsheet",
	"application/epub+zip":                           "EPUB document",

	// markup and data
	"text/html":        "HTML document",
	"text/xml":         "XML document",
	"application/json": "JSON data",
	"text/csv":         "CSV text",
	"text/rtf":         "Rich Text Format data",
	"image/svg+xml":    "SVG Scalable Vector Graphics image",

	// scripts and source
	"text/x-python":      "Python script text",
	"text/x-shellscript": "POSIX shell script text",
	"text/x-perl":        "Perl script text",
	"text/x-php":         "PHP script text",
	"text/x-lua":         "Lua script text",
	"text/javascript":    "JavaScript source text",
	"text/x-tcl":         "Tcl script text",

	// images
	"image/jpeg":                "JPEG image data",
	"image/png":                 "PNG image data",
	"image/gif":                 "GIF image data",
	"image/webp":                "RIFF (little-endian) data",
	"image/bmp":                 "PC bitmap",
	"image/tiff":                "TIFF image data",
	"image/x-icon":              "MS Windows icon resource",
	"image/vnd.adobe.photoshop": "Adobe Photoshop Image",
	"image/heic":                "ISO Media",
	"image/avif":                "ISO Media",

	// audio and video
	"audio/mpeg":       "Audio file with ID3",
	"audio/flac":       "FLAC audio bitstream data",
	"audio/wav":        "RIFF (little-endian) data",
	"audio/ogg":        "Ogg data",
	"audio/aac":        "MPEG ADTS",
	"audio/midi":       "Standard MIDI data",
	"video/mp4":        "ISO Media",
	"video/quicktime":  "ISO Media",
	"video/x-matroska": "Matroska data",
	"video/webm":       "WebM",
	"video/x-msvideo":  "RIFF (little-endian) data",
	"video/mpeg":       "MPEG sequence",

	// archives and compression
	"application/zip":              "Zip archive data",
	"application/gzip":             "gzip compressed data",
	"application/x-tar":            "POSIX tar archive",
	"application/x-bzip2":          "bzip2 compressed data",
	"application/x-xz":             "XZ compressed data",
	"application/zstd":             "Zstandard compressed data",
	"application/x-7z-compressed":  "7-zip archive data",
	"application/x-rar-compressed": "RAR archive data",
	"application/jar":              "Java archive data (JAR)",
	"application/x-rpm":            "RPM",

	"application/vnd.debian.binary-package": "Debian binary package",
	"application/x-iso9660-image":           "ISO 9660 CD-ROM filesystem data",

	// executables and binary formats
	"application/x-elf":         "ELF",
	"application/x-executable":  "ELF",
	"application/x-sharedlib":   "ELF",
	"application/x-mach-binary": "Mach-O",
	"application/x-java-applet": "compiled Java class data",
	"application/wasm":          "WebAssembly (wasm) binary module",
	"application/vnd.sqlite3":   "SQLite 3.x database",
	"application/x-sqlite3":     "SQLite 3.x database",

	"application/vnd.microsoft.portable-executable": "PE32 executable",

	// fonts
	"font/ttf":   "TrueType Font data",
	"font/otf":   "OpenType font data",
	"font/woff":  "Web Open Font Format",
	"font/woff2": "Web Open Font Format (Version 2)",
}
