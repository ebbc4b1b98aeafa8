// Package filter decides which changed paths count as source code.
package filter

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

// Predicate reports whether a repository-relative path should be analyzed.
type Predicate func(path string) bool

// All accepts every non-empty path.
func All(p string) bool { return p != "" }

var allowedExtensions = toSet(
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".py", ".pyw",
	".go",
	".rs",
	".java", ".kt", ".kts",
	".c", ".cpp", ".cc", ".cxx", ".h", ".hpp", ".hxx",
	".cs",
	".swift",
	".rb",
	".php",
	".scala",
	".sh", ".bash", ".zsh",
	".m", ".mm",
	".dart",
	".lua",
	".pl",
	".r",
	".sql",
	".vim",
)

var blockedExtensions = toSet(
	".md", ".mdx", ".rst", ".txt", ".pdf", ".doc", ".docx",
	".lock",
	".log",
	".csv", ".tsv", ".xml", ".html", ".htm",
	".env", ".example", ".local", ".production",
	".yml", ".yaml", ".toml", ".ini", ".cfg", ".conf",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".zip", ".tar", ".gz", ".bz2", ".7z", ".rar",
	".pyc", ".pyo", ".class", ".o", ".so", ".dll", ".exe",
	".jar", ".war", ".ear",
	".idea", ".vscode", ".suo", ".user",
	".npmignore", ".ds_store",
)

var blockedFilenames = toSet(
	"package-lock.json",
	"pnpm-lock.yaml",
	"yarn.lock",
	"gemfile.lock",
	"composer.lock",
	"cargo.lock",
	"poetry.lock",
	"pipfile.lock",
	"tsconfig.json",
	"jsconfig.json",
	"babel.config.json",
	"webpack.config.js",
	"vite.config.js",
	"vite.config.ts",
	"rollup.config.js",
	"jest.config.js",
	"vitest.config.ts",
	".eslintrc.json",
	".prettierrc",
	".editorconfig",
	"license",
	"readme",
	"readme.md",
	"changelog",
	"changelog.md",
	"authors",
	"contributing.md",
)

// sourceDirs enable .json files when one of them is a path segment.
var sourceDirs = []string{"src", "source"}

var extensionLanguages = map[string]string{
	".ts":    "typescript",
	".tsx":   "typescript",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".py":    "python",
	".pyw":   "python",
	".go":    "go",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".kts":   "kotlin",
	".c":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".h":     "c",
	".hpp":   "cpp",
	".hxx":   "cpp",
	".cs":    "csharp",
	".swift": "swift",
	".rb":    "ruby",
	".php":   "php",
	".scala": "scala",
	".sh":    "shell",
	".bash":  "shell",
	".zsh":   "shell",
	".m":     "objective-c",
	".mm":    "objective-c",
	".dart":  "dart",
	".lua":   "lua",
	".pl":    "perl",
	".r":     "r",
	".sql":   "sql",
	".vim":   "vim",
	".json":  "json",
}

// UnknownLanguage is returned when no language matches a path.
const UnknownLanguage = "unknown"

// IsSourceFile reports whether p is source code worth analyzing.
// Blocked names and extensions win over allowed ones; hidden files are
// kept only with an allowed extension; .json counts only under a src or
// source directory.
func IsSourceFile(p string) bool {
	if p == "" {
		return false
	}
	p = normalize(p)
	name := path.Base(p)
	lower := strings.ToLower(name)
	ext := extension(name)

	if blockedFilenames[lower] {
		return false
	}
	if blockedExtensions[ext] {
		return false
	}
	if strings.HasPrefix(lower, ".") && !allowedExtensions[ext] {
		return false
	}
	if allowedExtensions[ext] {
		return true
	}
	if ext == ".json" {
		return inSourceDir(p)
	}
	return false
}

// Language tags p with a lowercase language name, or UnknownLanguage.
func Language(p string) string {
	if p == "" {
		return UnknownLanguage
	}
	p = normalize(p)
	if lang, ok := extensionLanguages[extension(path.Base(p))]; ok {
		return lang
	}
	if lang, _ := enry.GetLanguageByExtension(p); lang != "" {
		return strings.ToLower(lang)
	}
	return UnknownLanguage
}

// extension returns the lowercase final suffix of name. A leading dot alone
// does not start a suffix, so ".gitignore" has none.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}

func inSourceDir(p string) bool {
	for _, seg := range strings.Split(path.Dir(p), "/") {
		for _, dir := range sourceDirs {
			if seg == dir {
				return true
			}
		}
	}
	return false
}

func normalize(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func toSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
