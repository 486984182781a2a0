package workspace

import (
	"path"
	"strings"
)

// LanguageID maps a file name to the editor language id
func LanguageID(fileName string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(fileName), ".")) {
	case "html":
		return "html"
	case "css":
		return "css"
	case "js", "jsx":
		return "javascript"
	case "ts", "tsx":
		return "typescript"
	case "dart":
		return "dart"
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "md":
		return "markdown"
	default:
		return "plaintext"
	}
}
