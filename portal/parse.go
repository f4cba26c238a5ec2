package portal

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"streamline/model"
)

// Selectors for the portal's rendered markup (a Vuetify app).
const (
	selClickableRow = "tr.clickable"
	selRosterLink   = "a[href*='/assess-by-member/']"
	selItemTitle    = "div.v-list-item__title"
	selPercentage   = "span.percentage-complete"
	selSkillGroup   = "div.v-list-group"
	selGroupMember  = "div[role='listitem']"
	selActiveState  = "button.v-item--active"
	selSignedIn     = "a[href*='/logout']"
)

type rowInfo struct {
	Time string
	Name string
}

// parseDayRows reads the clickable class rows from the day-list view. The
// first two cells of each row are its time and name labels.
func parseDayRows(html string) ([]rowInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	var rows []rowInfo
	doc.Find(selClickableRow).Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td")
		if cells.Length() < 2 {
			return
		}
		rows = append(rows, rowInfo{
			Time: strings.TrimSpace(cells.Eq(0).Text()),
			Name: strings.TrimSpace(cells.Eq(1).Text()),
		})
	})
	return rows, nil
}

// parseRoster appends one Student and one Present snapshot per roster
// link, in document order.
func parseRoster(html string, session *model.ClassSession) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	doc.Find(selRosterLink).Each(func(_ int, link *goquery.Selection) {
		title := link.Find(selItemTitle).First()
		if title.Length() == 0 {
			return
		}
		progress := "0%"
		if p := title.Find(selPercentage).First(); p.Length() > 0 {
			progress = strings.TrimSpace(p.Text())
		}
		name := cleanStudentName(title.Text(), progress)
		if name == "" {
			return
		}
		session.Snapshots = append(session.Snapshots, &model.AttendanceSnapshot{
			Session:  session,
			Student:  model.NewStudent(name),
			Status:   "Present",
			Progress: progress,
		})
	})
	return nil
}

// cleanStudentName strips the progress label and any parenthetical stage
// annotation from a roster title: "Jane Doe50% (Stage 3)" -> "Jane Doe".
func cleanStudentName(full, progress string) string {
	name := full
	if progress != "" {
		name = strings.ReplaceAll(name, progress, "")
	}
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

type skillEntry struct {
	Group   string
	Student string
	Status  string
}

// parseSkillGroups reads the skill-assessment pane: each group carries a
// category title and member rows with an active status control. A member
// with no active control is "Not Assessed".
func parseSkillGroups(html string) ([]skillEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	var entries []skillEntry
	doc.Find(selSkillGroup).Each(func(_ int, group *goquery.Selection) {
		title := group.Find(selItemTitle).First()
		if title.Length() == 0 {
			return
		}
		groupTitle := strings.TrimSpace(title.Text())
		group.Find(selGroupMember).Each(func(_ int, row *goquery.Selection) {
			nameElem := row.Find("a").First()
			if nameElem.Length() == 0 {
				return
			}
			name := nameElem.Text()
			if i := strings.Index(name, "("); i >= 0 {
				name = name[:i]
			}
			status := "Not Assessed"
			if active := row.Find(selActiveState).First(); active.Length() > 0 {
				status = strings.TrimSpace(active.Text())
			}
			entries = append(entries, skillEntry{
				Group:   groupTitle,
				Student: strings.TrimSpace(name),
				Status:  status,
			})
		})
	})
	return entries, nil
}

// applySkills attaches skill entries to the matching snapshots. Entries
// for students missing from the extracted roster are dropped; this stage
// never fabricates snapshots.
func applySkills(session *model.ClassSession, entries []skillEntry) {
	for _, e := range entries {
		snap := session.FindSnapshot(e.Student)
		if snap == nil {
			continue
		}
		snap.Notes += fmt.Sprintf("[%s: %s] ", e.Group, e.Status)
	}
}
