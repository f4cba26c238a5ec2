package planner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"streamline/model"
)

// AIClient produces generated text from a prompt plus context documents.
type AIClient interface {
	Plan(ctx context.Context, prompt string, contexts []string) (string, error)
}

// Renderer lays one generated plan out as a persisted document and
// returns its path.
type Renderer interface {
	Render(plan *model.LessonPlan, outputFolder string) (string, error)
}

// Planner turns an extracted batch into lesson-plan documents and a run
// report.
type Planner struct {
	ai     AIClient
	render Renderer
	log    *logrus.Entry
	now    func() time.Time
}

func New(ai AIClient, render Renderer) *Planner {
	return &Planner{
		ai:     ai,
		render: render,
		log:    logrus.WithField("component", "planner"),
		now:    time.Now,
	}
}

// Generate produces one document per snapshot-bearing session, in batch
// order, and returns the report: one "Generated: {path}" line per
// document. A session whose generation or rendering fails is logged and
// skipped; the rest of the batch still runs. Empty sessions produce
// nothing at all.
func (p *Planner) Generate(ctx context.Context, batch *model.SessionBatch, outputFolder string) (string, error) {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	var report strings.Builder
	for _, session := range batch.Sessions {
		if err := ctx.Err(); err != nil {
			return report.String(), err
		}
		if len(session.Snapshots) == 0 {
			continue
		}
		path, err := p.generateOne(ctx, session, outputFolder)
		if err != nil {
			p.log.WithField("class", session.Name).WithError(err).Warn("session skipped")
			continue
		}
		fmt.Fprintf(&report, "Generated: %s\n", path)
	}
	return report.String(), nil
}

func (p *Planner) generateOne(ctx context.Context, session *model.ClassSession, outputFolder string) (string, error) {
	prompt := fmt.Sprintf("Generate a lesson plan for %s based on the student progress report provided.", session.Name)
	content, err := p.ai.Plan(ctx, prompt, []string{FormatSessionContext(session)})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	plan := &model.LessonPlan{
		Session:          session,
		GeneratedContent: content,
		GeneratedAt:      p.now(),
	}
	path, err := p.render.Render(plan, outputFolder)
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	plan.DocPath = path
	plan.IsBeautified = true
	session.Plan = plan
	return path, nil
}

// FormatSessionContext renders the progress document handed to the AI
// client as context for one class.
func FormatSessionContext(session *model.ClassSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Class Report: %s\n", session.Name)
	b.WriteString("## Student Progress Summary\n")
	for _, snap := range session.Snapshots {
		fmt.Fprintf(&b, "### %s\n", snap.Student.Name)
		fmt.Fprintf(&b, "* **Overall Progress:** %s\n", snap.Progress)
		if snap.Notes != "" {
			b.WriteString("* **Skill Status:**\n")
			for _, line := range skillLines(snap.Notes) {
				b.WriteString("    * " + line + "\n")
			}
		} else {
			b.WriteString("* **Skill Status:** No individual skills assessed.\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// skillLines breaks a "[Skill: Status] [Skill: Status] " notes string
// into "Skill: **Status**" lines. Fragments that do not split into a
// name and a status are dropped.
func skillLines(notes string) []string {
	var lines []string
	for _, raw := range strings.Split(notes, "] [") {
		clean := strings.NewReplacer("[", "", "]", "").Replace(raw)
		parts := strings.SplitN(clean, ":", 2)
		if len(parts) != 2 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: **%s**",
			strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])))
	}
	return lines
}
