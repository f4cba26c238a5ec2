package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"streamline/model"
	"streamline/vault"
)

// ErrLoginFailed means the portal rejected the credentials or the
// dashboard never appeared. It aborts the whole run; nothing else does.
var ErrLoginFailed = errors.New("portal login failed")

const (
	skillsTabLabel = "Skills"
	signedInMarker = "Sign Out"

	loginWait  = 15 * time.Second
	listWait   = 10 * time.Second
	rosterWait = 3 * time.Second
	skillsWait = 2 * time.Second
)

// Credentials for the portal login form.
type Credentials struct {
	Username string
	Password string
}

// ResolvePassword returns the usable portal password: the decrypted form
// of the stored value when it decrypts, otherwise the stored value itself
// (legacy plaintext configs).
func ResolvePassword(v *vault.Vault, stored string) string {
	if plain := v.Decrypt(stored); plain != "" {
		return plain
	}
	return stored
}

// Engine drives a Page through the portal and extracts one day's batch of
// sessions, students and skill assessments.
type Engine struct {
	page    Page
	baseURL string
	log     *logrus.Entry
}

func NewEngine(page Page, baseURL string) *Engine {
	return &Engine{
		page:    page,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logrus.WithField("component", "portal"),
	}
}

// runState names the phases of one extraction run. The driver loop in
// ExtractDay moves through them in order; only login failure is fatal.
type runState int

const (
	stateLogin runState = iota
	stateDayList
	stateVisitRow
	stateDone
)

// Login signs the session in. If the page already shows the signed-in
// marker the credentials are not re-submitted.
func (e *Engine) Login(ctx context.Context, creds Credentials) error {
	if err := e.page.Navigate(ctx, e.baseURL+"/login"); err != nil {
		return fmt.Errorf("open login view: %w", err)
	}
	if html, err := e.page.HTML(ctx); err == nil && strings.Contains(html, signedInMarker) {
		e.log.Info("already signed in")
		return nil
	}
	if err := e.page.Fill(ctx, "input[type='email']", creds.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := e.page.Fill(ctx, "input[type='password']", creds.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	// The login button's markup varies between portal releases.
	if err := e.page.ClickText(ctx, "Login"); err != nil {
		if err := e.page.Click(ctx, "button[type='submit']"); err != nil {
			return fmt.Errorf("submit login form: %w", err)
		}
	}
	if err := e.page.WaitVisible(ctx, selSignedIn, loginWait); err != nil {
		html, herr := e.page.HTML(ctx)
		if herr != nil || !strings.Contains(html, signedInMarker) {
			e.log.Warn("dashboard never appeared after login")
			return ErrLoginFailed
		}
	}
	e.log.WithField("user", creds.Username).Info("signed in")
	return nil
}

// ExtractDay produces the SessionBatch for one calendar date. A day with
// no classes yields an empty batch, not an error. Individual rows that
// fail mid-extraction are kept with whatever was collected before the
// failure; only a login failure aborts the run.
func (e *Engine) ExtractDay(ctx context.Context, creds Credentials, date time.Time) (*model.SessionBatch, error) {
	batch := model.NewBatch(date)
	var (
		rows []rowInfo
		row  int
	)
	for st := stateLogin; st != stateDone; {
		// Cancellation is checked between states so a long day can be
		// aborted without leaving the session mid-navigation.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch st {
		case stateLogin:
			if err := e.Login(ctx, creds); err != nil {
				return nil, err
			}
			st = stateDayList
		case stateDayList:
			dayURL := fmt.Sprintf("%s/calendar/day/%s", e.baseURL, date.Format("2006-01-02"))
			e.log.WithField("url", dayURL).Info("opening day view")
			if err := e.page.Navigate(ctx, dayURL); err != nil {
				return nil, fmt.Errorf("open day view: %w", err)
			}
			if err := e.page.WaitVisible(ctx, selClickableRow, listWait); err != nil {
				// No clickable rows at all: an empty teaching day.
				e.log.Info("no classes scheduled")
				return batch, nil
			}
			html, err := e.page.HTML(ctx)
			if err != nil {
				return nil, fmt.Errorf("read day view: %w", err)
			}
			if rows, err = parseDayRows(html); err != nil {
				return nil, fmt.Errorf("parse day view: %w", err)
			}
			// The count is fixed for this page load; later navigation
			// invalidates row handles but not the set of rows.
			e.log.WithField("classes", len(rows)).Info("day view loaded")
			st = stateVisitRow
		case stateVisitRow:
			if row >= len(rows) {
				st = stateDone
				break
			}
			session := e.visitRow(ctx, rows[row], row)
			session.Batch = batch
			batch.Sessions = append(batch.Sessions, session)
			row++
		}
	}
	return batch, nil
}

// visitRow enters one class row, extracts its roster and skills, and
// returns to the day list. The returned session may be partial; the
// caller appends it regardless.
func (e *Engine) visitRow(ctx context.Context, info rowInfo, index int) *model.ClassSession {
	session := &model.ClassSession{
		Name: strings.TrimSpace(info.Time + " " + info.Name),
		Time: info.Time,
	}
	log := e.log.WithField("class", session.Name)
	log.Info("processing class")

	if err := e.extractDetail(ctx, session, index); err != nil {
		log.WithError(err).Warn("class extraction incomplete")
	}

	// Return to the day list and let it settle. Skipping this wait risks
	// reading a half-rendered list on the next row.
	if err := e.page.Back(ctx); err != nil {
		log.WithError(err).Warn("back navigation failed")
		return session
	}
	if err := e.page.WaitVisible(ctx, selClickableRow, listWait); err != nil {
		log.WithError(err).Warn("day list did not settle after back navigation")
	}
	return session
}

func (e *Engine) extractDetail(ctx context.Context, session *model.ClassSession, index int) error {
	// Row handles captured before any navigation are stale by now, so the
	// row is re-resolved by position on the current page.
	if err := e.page.ClickNth(ctx, selClickableRow, index); err != nil {
		return fmt.Errorf("open class view: %w", err)
	}

	// Prefer the first roster link as the ready signal. A class with no
	// roster never renders one; fall back to the document body rather
	// than failing the row.
	if err := e.page.WaitVisible(ctx, selRosterLink, rosterWait); err != nil {
		if err := e.page.WaitVisible(ctx, "body", rosterWait); err != nil {
			return fmt.Errorf("class view did not load: %w", err)
		}
	}

	html, err := e.page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("read class view: %w", err)
	}
	if err := parseRoster(html, session); err != nil {
		return fmt.Errorf("parse roster: %w", err)
	}
	e.log.WithField("students", len(session.Snapshots)).Info("roster extracted")

	e.extractSkills(ctx, session)
	return nil
}

// extractSkills is best-effort: a missing tab, an empty pane or a read
// error leaves the session's snapshots without skill notes but never
// fails the row.
func (e *Engine) extractSkills(ctx context.Context, session *model.ClassSession) {
	if err := e.page.ClickText(ctx, skillsTabLabel); err != nil {
		return // no Skills tab for this class
	}
	if err := e.page.WaitVisible(ctx, selSkillGroup, skillsWait); err != nil {
		return // tab opened but no skill groups configured
	}
	html, err := e.page.HTML(ctx)
	if err != nil {
		e.log.WithError(err).Warn("skills pane unreadable")
		return
	}
	entries, err := parseSkillGroups(html)
	if err != nil {
		e.log.WithError(err).Warn("skills pane unparseable")
		return
	}
	applySkills(session, entries)
}
