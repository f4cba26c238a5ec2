package model

import (
	"strings"
	"time"
)

// SessionBatch holds everything extracted from the portal for one
// teaching day. A batch with no sessions is a valid result (no classes
// scheduled that day).
type SessionBatch struct {
	RunDate     time.Time
	TeachingDay string // "monday", "tuesday", ...
	Sessions    []*ClassSession
}

// ClassSession is one scheduled class, e.g. "16:00 Stage 4".
type ClassSession struct {
	Name      string
	Time      string
	Batch     *SessionBatch
	Snapshots []*AttendanceSnapshot
	Plan      *LessonPlan
}

// Student is value-like within a single extraction run; no identity merge
// against persisted history happens here.
type Student struct {
	Name           string
	NormalizedName string
}

// AttendanceSnapshot records one student's state within one class: their
// attendance status, an overall-progress label, and skill assessments
// accumulated as bracketed "[Skill: Status] " entries in Notes.
type AttendanceSnapshot struct {
	Session  *ClassSession
	Student  *Student
	Status   string
	Progress string
	Notes    string
}

// LessonPlan is the generated output for one class.
type LessonPlan struct {
	Session          *ClassSession
	GeneratedContent string
	IsBeautified     bool
	DocPath          string
	GeneratedAt      time.Time
}

// NewStudent builds a Student with its normalized matching name.
func NewStudent(name string) *Student {
	return &Student{Name: name, NormalizedName: NormalizeName(name)}
}

// NormalizeName lower-cases a display name and strips all whitespace.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// FindSnapshot returns the snapshot for the named student, or nil. The
// match is exact on the display name; skill attribution relies on this.
func (s *ClassSession) FindSnapshot(studentName string) *AttendanceSnapshot {
	for _, snap := range s.Snapshots {
		if snap.Student != nil && snap.Student.Name == studentName {
			return snap
		}
	}
	return nil
}

// NewBatch creates the batch for one run date.
func NewBatch(date time.Time) *SessionBatch {
	return &SessionBatch{
		RunDate:     date,
		TeachingDay: strings.ToLower(date.Weekday().String()),
	}
}
