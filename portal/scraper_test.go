package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"streamline/vault"
)

// fakePage scripts a tiny version of the portal: a login page, a day
// list, and per-row class views with optional skills panes. Selector
// waits are answered by querying the current markup, so the engine's
// navigation logic runs exactly as it would against a browser.
type fakePage struct {
	loginHTML     string
	dashboardHTML string
	dayHTML       string
	classHTML     []string
	skillsHTML    map[int]string

	loginOK bool
	cur     string
	curRow  int
	fills   map[string]string
	backs   int
}

func newFakePage() *fakePage {
	return &fakePage{
		loginHTML:     `<html><body><form><input type="email"><input type="password"><button type="submit">Login</button></form></body></html>`,
		dashboardHTML: `<html><body><a href="/logout">Sign Out</a><p>Dashboard</p></body></html>`,
		skillsHTML:    map[int]string{},
		fills:         map[string]string{},
		loginOK:       true,
	}
}

func (f *fakePage) Navigate(_ context.Context, url string) error {
	switch {
	case strings.Contains(url, "/login"):
		f.cur = f.loginHTML
	case strings.Contains(url, "/calendar/day/"):
		f.cur = f.dayHTML
	default:
		return fmt.Errorf("unexpected url %s", url)
	}
	return nil
}

func (f *fakePage) Back(context.Context) error {
	f.backs++
	f.cur = f.dayHTML
	return nil
}

func (f *fakePage) Fill(_ context.Context, selector, value string) error {
	f.fills[selector] = value
	return nil
}

func (f *fakePage) Click(context.Context, string) error { return nil }

func (f *fakePage) ClickNth(_ context.Context, selector string, index int) error {
	if selector != selClickableRow {
		return fmt.Errorf("unexpected selector %q", selector)
	}
	if index >= len(f.classHTML) {
		return fmt.Errorf("no row %d", index)
	}
	f.curRow = index
	f.cur = f.classHTML[index]
	return nil
}

func (f *fakePage) ClickText(_ context.Context, text string) error {
	switch text {
	case "Login":
		if f.loginOK {
			f.cur = f.dashboardHTML
		}
		return nil
	case "Skills":
		if html, ok := f.skillsHTML[f.curRow]; ok {
			f.cur = html
			return nil
		}
		return fmt.Errorf("no element with text %q", text)
	}
	return fmt.Errorf("no element with text %q", text)
}

func (f *fakePage) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	if selector == "body" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.cur))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%q never appeared", selector)
	}
	return nil
}

func (f *fakePage) HTML(context.Context) (string, error) { return f.cur, nil }

var testCreds = Credentials{Username: "teacher@example.com", Password: "secret"}

func testDate() time.Time {
	return time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)
}

func TestExtractDay_FullScenario(t *testing.T) {
	page := newFakePage()
	page.dayHTML = `<html><body><table>
<tr class="clickable"><td> 16:00 </td><td> Stage 4 </td></tr>
</table></body></html>`
	page.classHTML = []string{`<html><body>
<a href="/class/1/assess-by-member/11"><div class="v-list-item__title">Alice Brown<span class="percentage-complete">50%</span></div></a>
<a href="/class/1/assess-by-member/12"><div class="v-list-item__title">Ben Cole (Stage 3)</div></a>
</body></html>`}
	page.skillsHTML[0] = `<html><body>
<div class="v-list-group"><div class="v-list-item__title">Float</div>
  <div role="listitem"><a>Alice Brown</a><button class="v-item--active">Proficient</button></div>
</div>
</body></html>`

	engine := NewEngine(page, "https://portal.example")
	batch, err := engine.ExtractDay(context.Background(), testCreds, testDate())
	if err != nil {
		t.Fatalf("ExtractDay: %v", err)
	}

	if batch.TeachingDay != "monday" {
		t.Errorf("TeachingDay = %q, want monday", batch.TeachingDay)
	}
	if len(batch.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(batch.Sessions))
	}
	session := batch.Sessions[0]
	if session.Name != "16:00 Stage 4" {
		t.Errorf("session name = %q, want %q", session.Name, "16:00 Stage 4")
	}
	if session.Batch != batch {
		t.Error("session does not reference its batch")
	}
	if len(session.Snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(session.Snapshots))
	}
	if got, want := session.Snapshots[0].Notes, "[Float: Proficient] "; got != want {
		t.Errorf("Alice notes = %q, want %q", got, want)
	}
	if session.Snapshots[1].Notes != "" {
		t.Errorf("Ben notes = %q, want empty", session.Snapshots[1].Notes)
	}
	if page.fills["input[type='email']"] != testCreds.Username {
		t.Errorf("username was not filled in")
	}
	if page.backs != 1 {
		t.Errorf("expected 1 back navigation, got %d", page.backs)
	}
}

func TestExtractDay_EmptyDay(t *testing.T) {
	page := newFakePage()
	page.dayHTML = `<html><body><p>No classes scheduled.</p></body></html>`

	batch, err := NewEngine(page, "https://portal.example").ExtractDay(context.Background(), testCreds, testDate())
	if err != nil {
		t.Fatalf("ExtractDay: %v", err)
	}
	if len(batch.Sessions) != 0 {
		t.Errorf("expected empty batch, got %d sessions", len(batch.Sessions))
	}
}

func TestExtractDay_LoginFailure(t *testing.T) {
	page := newFakePage()
	page.loginOK = false

	_, err := NewEngine(page, "https://portal.example").ExtractDay(context.Background(), testCreds, testDate())
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("err = %v, want ErrLoginFailed", err)
	}
}

func TestExtractDay_SkillsAbsentDoesNotFailRow(t *testing.T) {
	page := newFakePage()
	page.dayHTML = `<html><body><table>
<tr class="clickable"><td>17:00</td><td>Adults</td></tr>
</table></body></html>`
	// Class view with a roster but no Skills tab at all.
	page.classHTML = []string{`<html><body>
<a href="/class/2/assess-by-member/21"><div class="v-list-item__title">Cara Day<span class="percentage-complete">10%</span></div></a>
</body></html>`}

	batch, err := NewEngine(page, "https://portal.example").ExtractDay(context.Background(), testCreds, testDate())
	if err != nil {
		t.Fatalf("ExtractDay: %v", err)
	}
	if len(batch.Sessions) != 1 || len(batch.Sessions[0].Snapshots) != 1 {
		t.Fatalf("unexpected batch shape: %+v", batch)
	}
	if batch.Sessions[0].Snapshots[0].Notes != "" {
		t.Errorf("notes should stay empty when no skills pane exists")
	}
}

func TestExtractDay_RowFailureKeepsPartialSession(t *testing.T) {
	page := newFakePage()
	page.dayHTML = `<html><body><table>
<tr class="clickable"><td>16:00</td><td>Stage 4</td></tr>
<tr class="clickable"><td>16:30</td><td>Stage 5</td></tr>
</table></body></html>`
	// Only one class view exists; clicking the second row fails.
	page.classHTML = []string{`<html><body>
<a href="/class/1/assess-by-member/11"><div class="v-list-item__title">Alice Brown<span class="percentage-complete">50%</span></div></a>
</body></html>`}

	batch, err := NewEngine(page, "https://portal.example").ExtractDay(context.Background(), testCreds, testDate())
	if err != nil {
		t.Fatalf("ExtractDay: %v", err)
	}
	if len(batch.Sessions) != 2 {
		t.Fatalf("expected both sessions kept, got %d", len(batch.Sessions))
	}
	if len(batch.Sessions[0].Snapshots) != 1 {
		t.Errorf("first session lost its roster")
	}
	if got := batch.Sessions[1].Name; got != "16:30 Stage 5" {
		t.Errorf("partial session name = %q", got)
	}
	if len(batch.Sessions[1].Snapshots) != 0 {
		t.Errorf("failed row should carry no snapshots")
	}
}

func TestExtractDay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(newFakePage(), "https://portal.example").ExtractDay(ctx, testCreds, testDate())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolvePassword(t *testing.T) {
	v := vault.New("fixed-test-key")
	if got := ResolvePassword(v, v.Encrypt("hunter2")); got != "hunter2" {
		t.Errorf("decryptable value: got %q, want hunter2", got)
	}
	// A legacy plaintext value is not valid ciphertext; the raw value is
	// used as-is instead of crashing the run.
	if got := ResolvePassword(v, "hunter2"); got != "hunter2" {
		t.Errorf("legacy plaintext: got %q, want hunter2", got)
	}
}

func TestBrowserClose_Idempotent(t *testing.T) {
	var b Browser
	b.Close()
	b.Close()
}
