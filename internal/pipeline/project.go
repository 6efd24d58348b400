package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"makepot/internal/config"
	"makepot/internal/extractor"
	"makepot/internal/pofile"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// headerScanSize is how much of a candidate main file is searched for a
// header comment.
const headerScanSize = 8 * 1024

// Project describes the plugin, theme or package being extracted.
type Project struct {
	Type   string
	Slug   string
	Domain string
	// MainFile is the root-relative file the headers were read from.
	MainFile string
	Headers  map[string]string
}

// Name returns the display name from the headers, falling back to the slug.
func (p *Project) Name() string {
	for _, key := range []string{"Plugin Name", "Theme Name"} {
		if v := p.Headers[key]; v != "" {
			return v
		}
	}
	return p.Slug
}

// detectProject reads the main-file headers under root. A configured type
// restricts detection to that kind.
func detectProject(root string, cfg *config.Config) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", abs)
	}

	p := &Project{
		Type:    cfg.Project.Type,
		Slug:    cfg.Project.Slug,
		Headers: map[string]string{},
	}
	if p.Slug == "" {
		p.Slug = filepath.Base(abs)
	}

	want := func(t string) bool { return p.Type == config.TypeAuto || p.Type == t }

	switch {
	case want(config.TypePlugin) && p.findPlugin(abs):
		p.Type = config.TypePlugin
	case want(config.TypeTheme) && p.findTheme(abs):
		p.Type = config.TypeTheme
	case want(config.TypeBlock) && p.findBlock(abs):
		p.Type = config.TypeBlock
	case p.Type == config.TypeAuto:
		p.Type = config.TypeGeneric
	}

	p.Domain = cfg.Project.Domain
	if p.Domain == "" {
		p.Domain = p.Headers["Text Domain"]
	}
	if p.Domain == "" {
		p.Domain = p.Slug
	}
	return p, nil
}

// findPlugin looks for "Plugin Name" in <slug>.php first, then in the other
// top-level PHP files in name order.
func (p *Project) findPlugin(root string) bool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	candidates := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".php")
	})
	main := p.Slug + ".php"
	if i := slices.Index(candidates, main); i > 0 {
		candidates = append([]string{main}, slices.Delete(candidates, i, i+1)...)
	}

	for _, name := range candidates {
		headers, ok := readHeaders(filepath.Join(root, name), "Plugin Name")
		if ok {
			p.MainFile = name
			p.Headers = headers
			return true
		}
	}
	return false
}

func (p *Project) findTheme(root string) bool {
	headers, ok := readHeaders(filepath.Join(root, "style.css"), "Theme Name")
	if !ok {
		return false
	}
	p.MainFile = "style.css"
	p.Headers = headers
	return true
}

func (p *Project) findBlock(root string) bool {
	data, err := os.ReadFile(filepath.Join(root, "block.json"))
	if err != nil || !gjson.ValidBytes(data) {
		return false
	}
	if domain := gjson.GetBytes(data, "textdomain").String(); domain != "" {
		p.Headers["Text Domain"] = domain
	}
	p.MainFile = "block.json"
	return true
}

func readHeaders(path, required string) (map[string]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	headers := extractor.ParseFileHeaders(data[:min(len(data), headerScanSize)])
	if headers[required] == "" {
		return nil, false
	}
	return headers, true
}

// kind is the HeaderRecords kind of the project.
func (p *Project) kind() string {
	switch p.Type {
	case config.TypePlugin, config.TypeTheme:
		return p.Type
	}
	return ""
}

// potHeader builds the header entry of a fresh POT file.
func (p *Project) potHeader(cfg *config.Config, now time.Time) pofile.Header {
	name := cfg.Project.PackageName
	if name == "" {
		name = p.Name()
	}
	if v := p.Headers["Version"]; v != "" && cfg.Project.PackageName == "" {
		name += " " + v
	}

	var h pofile.Header
	h.Set("Project-Id-Version", name)
	if kind := p.kind(); kind != "" {
		h.Set("Report-Msgid-Bugs-To", fmt.Sprintf("https://wordpress.org/support/%s/%s", kind, p.Slug))
	}
	h.Set("Last-Translator", "FULL NAME <EMAIL@ADDRESS>")
	h.Set("Language-Team", "LANGUAGE <LL@li.org>")
	h.Set("MIME-Version", "1.0")
	h.Set("Content-Type", "text/plain; charset=UTF-8")
	h.Set("Content-Transfer-Encoding", "8bit")
	h.Set("POT-Creation-Date", now.UTC().Format("2006-01-02T15:04:05-07:00"))
	h.Set("PO-Revision-Date", "YEAR-MO-DA HO:MI+ZONE")
	h.Set("X-Generator", "makepot")
	h.Set("X-Domain", p.Domain)
	return h
}

// fileComment returns the leading comment of a fresh POT file.
func (p *Project) fileComment(cfg *config.Config, now time.Time) string {
	if cfg.Project.FileComment != "" {
		return cfg.Project.FileComment
	}
	var lines []string
	if author := p.Headers["Author"]; author != "" {
		lines = append(lines, fmt.Sprintf("Copyright (C) %d %s", now.Year(), author))
	}
	switch {
	case p.Headers["License"] != "":
		lines = append(lines, fmt.Sprintf("This file is distributed under the %s.", p.Headers["License"]))
	case p.kind() != "":
		lines = append(lines, fmt.Sprintf("This file is distributed under the same license as the %s %s.", p.Name(), p.kind()))
	default:
		lines = append(lines, fmt.Sprintf("This file is distributed under the same license as the %s package.", p.Name()))
	}
	return strings.Join(lines, "\n")
}
