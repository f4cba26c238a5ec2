package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"streamline/model"
)

func testBatch() *model.SessionBatch {
	batch := model.NewBatch(time.Date(2024, time.May, 13, 0, 0, 0, 0, time.Local))
	batch.Sessions = []*model.ClassSession{
		{Name: "16:00 Stage 4", Time: "16:00", Batch: batch},
		{Name: "16:30 Stage 5", Time: "16:30", Batch: batch},
		{Name: "Mystery Class", Time: "whenever", Batch: batch},
	}
	return batch
}

func TestBuildDayCalendar(t *testing.T) {
	body := BuildDayCalendar(testBatch())

	cal, err := ics.ParseCalendar(strings.NewReader(body))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (bad time label skipped), got %d", len(events))
	}

	var summaries []string
	for _, ev := range events {
		summaries = append(summaries, ev.GetProperty(ics.ComponentPropertySummary).Value)
	}
	for _, want := range []string{"16:00 Stage 4", "16:30 Stage 5"} {
		found := false
		for _, s := range summaries {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("no event with summary %q in %v", want, summaries)
		}
	}
}

func TestBuildDayCalendar_StableEventIDs(t *testing.T) {
	a := BuildDayCalendar(testBatch())
	b := BuildDayCalendar(testBatch())

	calA, err := ics.ParseCalendar(strings.NewReader(a))
	if err != nil {
		t.Fatal(err)
	}
	calB, err := ics.ParseCalendar(strings.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	idsA := eventIDs(calA)
	idsB := eventIDs(calB)
	for i := range idsA {
		if idsA[i] != idsB[i] {
			t.Errorf("event IDs differ between exports: %v vs %v", idsA, idsB)
		}
	}
}

func eventIDs(cal *ics.Calendar) []string {
	var ids []string
	for _, ev := range cal.Events() {
		ids = append(ids, ev.GetProperty(ics.ComponentPropertyUniqueId).Value)
	}
	return ids
}

func TestSessionStart(t *testing.T) {
	date := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.Local)
	start, ok := sessionStart(date, " 16:00 ")
	if !ok {
		t.Fatal("expected time label to parse")
	}
	if start.Hour() != 16 || start.Minute() != 0 || start.Day() != 13 {
		t.Errorf("start = %v", start)
	}
	if _, ok := sessionStart(date, "four pm"); ok {
		t.Error("bad label should not parse")
	}
}
