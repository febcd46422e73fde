package groups

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/viewdata"
	"github.com/dalemusser/studyhub/internal/domain/models"
)

// groupRow is one card on the list page.
type groupRow struct {
	ID           string
	Name         string
	Subject      string
	CourseNumber string
	Description  string
	VideoLink    string
	Creator      string
	Members      []string
	ExpiresAt    string
	IsMember     bool
	IsCreator    bool
}

type listData struct {
	viewdata.BaseVM
	Subject  string
	Subjects []string
	Groups   []groupRow
}

// groupFormData backs both the new and edit forms.
type groupFormData struct {
	viewdata.BaseVM
	Error   string
	Field   string
	IsEdit  bool
	GroupID string
	Action  string

	Subjects []string
	Input    lifecycle.GroupInput
}

func toRow(g models.Group, identity string) groupRow {
	row := groupRow{
		ID:          g.ID.Hex(),
		Name:        g.Name,
		Subject:     g.Subject,
		Description: g.Description,
		Creator:     g.Creator,
		Members:     g.Members,
		IsMember:    g.HasMember(identity),
		IsCreator:   g.Creator == identity,
	}
	if g.CourseNumber != nil {
		row.CourseNumber = *g.CourseNumber
	}
	if g.VideoLink != nil {
		row.VideoLink = *g.VideoLink
	}
	if g.ExpiresAt != nil {
		row.ExpiresAt = g.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 UTC")
	}
	return row
}

// readGroupInput pulls the group form fields out of a parsed request.
func readGroupInput(r *http.Request) lifecycle.GroupInput {
	return lifecycle.GroupInput{
		Name:         r.FormValue("name"),
		Subject:      r.FormValue("subject"),
		SubjectOther: r.FormValue("subject_other"),
		CourseNumber: r.FormValue("course_number"),
		Description:  r.FormValue("description"),
		VideoLink:    r.FormValue("video_link"),
		ExpiresAt:    r.FormValue("expires_at"),
	}
}

// inputFromGroup pre-fills the edit form. Free-text subjects come back
// as Other plus the text.
func inputFromGroup(g models.Group) lifecycle.GroupInput {
	in := lifecycle.GroupInput{
		Name:        g.Name,
		Subject:     g.Subject,
		Description: g.Description,
	}
	if !lifecycle.IsListedSubject(g.Subject) {
		in.Subject = lifecycle.SubjectOther
		in.SubjectOther = g.Subject
	}
	if g.CourseNumber != nil {
		in.CourseNumber = *g.CourseNumber
	}
	if g.VideoLink != nil {
		in.VideoLink = *g.VideoLink
	}
	if g.ExpiresAt != nil {
		in.ExpiresAt = g.ExpiresAt.In(time.UTC).Format(lifecycle.ExpiresAtLayout)
	}
	return in
}

// filterSubjects is the list page's subject menu.
func filterSubjects() []string {
	out := make([]string, 0, len(lifecycle.Subjects)+2)
	out = append(out, lifecycle.SubjectAll)
	out = append(out, lifecycle.Subjects...)
	return append(out, lifecycle.SubjectOther)
}

func formSubjects() []string {
	out := make([]string, 0, len(lifecycle.Subjects)+1)
	out = append(out, lifecycle.Subjects...)
	return append(out, lifecycle.SubjectOther)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func trimSubject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return lifecycle.SubjectAll
	}
	return s
}
