package extractor

import (
	"path/filepath"
	"strings"
)

// Language identifies how a source file is parsed.
type Language string

const (
	LangPHP        Language = "php"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangBlockJSON  Language = "block-json"
	LangThemeJSON  Language = "theme-json"
)

// IsScript reports whether the language is one of the JS family.
func (l Language) IsScript() bool {
	return l == LangJavaScript || l == LangTypeScript || l == LangTSX
}

// IsManifest reports whether the language is a JSON manifest.
func (l Language) IsManifest() bool {
	return l == LangBlockJSON || l == LangThemeJSON
}

var extLanguages = map[string]Language{
	".php": LangPHP,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
}

// DetectLanguage maps a file path to its language. Theme style variations
// under styles/ are theme.json documents.
func DetectLanguage(path string) (Language, bool) {
	base := filepath.Base(path)
	switch base {
	case "block.json":
		return LangBlockJSON, true
	case "theme.json":
		return LangThemeJSON, true
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == ".json" {
		dir := filepath.Base(filepath.Dir(path))
		if dir == "styles" {
			return LangThemeJSON, true
		}
		return "", false
	}
	if strings.HasSuffix(base, ".d.ts") {
		return "", false
	}
	lang, ok := extLanguages[ext]
	return lang, ok
}
