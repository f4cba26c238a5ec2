package calendar

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"streamline/model"
)

// Sessions run 30 minutes unless the portal says otherwise (it does not
// expose an end time on the day view).
const defaultDuration = 30 * time.Minute

// BuildDayCalendar renders an extracted day as an ICS calendar with one
// event per class. Sessions whose time label does not parse are skipped.
func BuildDayCalendar(batch *model.SessionBatch) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//streamline//day-schedule//EN")

	now := time.Now()
	for _, session := range batch.Sessions {
		start, ok := sessionStart(batch.RunDate, session.Time)
		if !ok {
			continue
		}
		event := cal.AddEvent(eventID(session.Name, start))
		event.SetSummary(session.Name)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(defaultDuration))
		event.SetDtStampTime(now)
		if session.Plan != nil && session.Plan.DocPath != "" {
			event.SetDescription("Lesson plan: " + session.Plan.DocPath)
		}
	}
	return cal.Serialize()
}

func sessionStart(date time.Time, label string) (time.Time, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, time.Local), true
}

// eventID derives a stable identifier from the event's summary and start
// so re-exports of the same day produce the same IDs.
func eventID(summary string, start time.Time) string {
	sum := md5.Sum([]byte(summary + start.Format(time.RFC3339)))
	return hex.EncodeToString(sum[:])
}
