package renderer

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"streamline/model"
)

// HTMLRenderer lays generated plan text out as a standalone HTML
// document. It understands the lightweight conventions the AI output
// uses: "# "/"## " headings, "* "/"- " bullets, and "**" bold toggling.
type HTMLRenderer struct {
	now func() time.Time
}

func New() *HTMLRenderer {
	return &HTMLRenderer{now: time.Now}
}

// Render writes the plan document into outputFolder and returns its
// path. The file name is derived from the session name and the current
// date, so re-running a day overwrites that day's documents.
func (r *HTMLRenderer) Render(plan *model.LessonPlan, outputFolder string) (string, error) {
	name := fmt.Sprintf("LessonPlan_%s_%s.html",
		sanitizeName(plan.Session.Name), r.now().Format("20060102"))
	fullPath := filepath.Join(outputFolder, name)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Lesson Plan: %s</title>\n", html.EscapeString(plan.Session.Name))
	b.WriteString("<style>body{font-family:sans-serif;max-width:48em;margin:2em auto}h1{color:#2e74b5}h2{color:#1f4d78}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>Lesson Plan: %s</h1>\n", html.EscapeString(plan.Session.Name))

	inList := false
	for _, line := range strings.Split(plan.GeneratedContent, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, " \t")
		isBullet := strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ")
		if inList && !isBullet {
			b.WriteString("</ul>\n")
			inList = false
		}
		switch {
		case strings.HasPrefix(trimmed, "## "):
			fmt.Fprintf(&b, "<h3>%s</h3>\n", inline(trimmed[3:]))
		case strings.HasPrefix(trimmed, "# "):
			fmt.Fprintf(&b, "<h2>%s</h2>\n", inline(trimmed[2:]))
		case isBullet:
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(trimmed[2:]))
		case trimmed == "":
			// blank lines separate paragraphs; nothing to emit
		default:
			fmt.Fprintf(&b, "<p>%s</p>\n", inline(line))
		}
	}
	if inList {
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(fullPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return fullPath, nil
}

// inline escapes a line and converts "**" pairs to <strong> tags.
func inline(s string) string {
	parts := strings.Split(html.EscapeString(s), "**")
	if len(parts) == 1 {
		return parts[0]
	}
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 {
			b.WriteString("<strong>")
		}
		b.WriteString(p)
		if i%2 == 1 {
			b.WriteString("</strong>")
		}
	}
	return b.String()
}

// sanitizeName makes a session name file-system safe: spaces become
// underscores, every other non-alphanumeric rune is dropped.
// "16:00 Stage 4" -> "1600_Stage_4".
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
