package data

import (
	"path"
	"strings"
)

type ContentType string

const (
	ContentTypeTextPlain         ContentType = "text/plain"
	ContentTypeTextHTML          ContentType = "text/html"
	ContentTypeTextCSS           ContentType = "text/css"
	ContentTypeTextJavaScript    ContentType = "text/javascript"
	ContentTypeTextCSV           ContentType = "text/csv"
	ContentTypeTextMarkdown      ContentType = "text/markdown"
	ContentTypeImagePNG          ContentType = "image/png"
	ContentTypeImageJPEG         ContentType = "image/jpeg"
	ContentTypeImageSVGXML       ContentType = "image/svg+xml"
	ContentTypeApplicationPDF    ContentType = "application/pdf"
	ContentTypeApplicationZip    ContentType = "application/zip"
	ContentTypeApplicationGZip   ContentType = "application/gzip"
	ContentTypeApplicationXTar   ContentType = "application/x-tar"
	ContentTypeApplicationJSON   ContentType = "application/json"
	ContentTypeApplicationXML    ContentType = "application/xml"
	ContentTypeApplicationYAML   ContentType = "application/yaml"
	ContentTypeApplicationStream ContentType = "application/octet-stream"
	ContentTypeDirectory         ContentType = "inode/directory"
	ContentTypeSymlink           ContentType = "inode/symlink"
)

var extensionToContentType = map[string]ContentType{
	".txt":  ContentTypeTextPlain,
	".log":  ContentTypeTextPlain,
	".conf": ContentTypeTextPlain,
	".html": ContentTypeTextHTML,
	".css":  ContentTypeTextCSS,
	".js":   ContentTypeTextJavaScript,
	".csv":  ContentTypeTextCSV,
	".md":   ContentTypeTextMarkdown,
	".png":  ContentTypeImagePNG,
	".jpg":  ContentTypeImageJPEG,
	".jpeg": ContentTypeImageJPEG,
	".svg":  ContentTypeImageSVGXML,
	".pdf":  ContentTypeApplicationPDF,
	".zip":  ContentTypeApplicationZip,
	".gz":   ContentTypeApplicationGZip,
	".tar":  ContentTypeApplicationXTar,
	".json": ContentTypeApplicationJSON,
	".xml":  ContentTypeApplicationXML,
	".yaml": ContentTypeApplicationYAML,
	".yml":  ContentTypeApplicationYAML,
}

// ContentTypeOf guesses the content type of the entry at name from its
// mode and extension. Unknown regular files are application/octet-stream.
func ContentTypeOf(name string, mode FileMode) ContentType {
	switch {
	case mode.IsDir():
		return ContentTypeDirectory
	case mode.IsSymlink():
		return ContentTypeSymlink
	}

	if ct, ok := extensionToContentType[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return ContentTypeApplicationStream
}
