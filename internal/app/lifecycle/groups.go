package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExpiresAtLayout is the accepted expiration format, the value an HTML
// datetime-local input submits. It is read as UTC.
const ExpiresAtLayout = "2006-01-02T15:04"

// SubjectAll is the list filter sentinel meaning "no filter". It is never
// stored as a subject.
const SubjectAll = "All"

// SubjectOther selects free-text subject entry.
const SubjectOther = "Other"

// Subjects is the fixed subject list offered by the group form.
var Subjects = []string{
	"Math",
	"Science",
	"CS",
	"English",
	"History",
	"Languages",
	"Business",
	"Engineering",
	"Art",
}

// IsListedSubject reports whether s is one of Subjects.
func IsListedSubject(s string) bool {
	for _, v := range Subjects {
		if v == s {
			return true
		}
	}
	return false
}

// GroupInput is the raw group form.
type GroupInput struct {
	Name         string
	Subject      string
	SubjectOther string
	CourseNumber string
	Description  string
	VideoLink    string
	ExpiresAt    string
}

type groupForm struct {
	Name         string `validate:"notblank,max=100" label:"Group name"`
	Description  string `validate:"notblank,max=2000" label:"Description"`
	CourseNumber string `validate:"max=30" label:"Course number"`
	VideoLink    string `validate:"omitempty,httpurl,max=500" label:"Video link"`
}

// normalize validates in and returns the fields to store.
func (in GroupInput) normalize() (groupstore.Info, error) {
	form := groupForm{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		CourseNumber: strings.TrimSpace(in.CourseNumber),
		VideoLink:    strings.TrimSpace(in.VideoLink),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		return groupstore.Info{}, invalid(res.Errors[0].Field, res.First())
	}

	subject, err := resolveSubject(in.Subject, in.SubjectOther)
	if err != nil {
		return groupstore.Info{}, err
	}

	info := groupstore.Info{
		Name:         form.Name,
		Subject:      subject,
		Description:  form.Description,
		CourseNumber: optional(form.CourseNumber),
		VideoLink:    optional(form.VideoLink),
	}

	if raw := strings.TrimSpace(in.ExpiresAt); raw != "" {
		t, err := time.ParseInLocation(ExpiresAtLayout, raw, time.UTC)
		if err != nil {
			return groupstore.Info{}, invalid("ExpiresAt", "Expiration must be a date and time like 2025-05-01T18:30.")
		}
		info.ExpiresAt = &t
	}
	return info, nil
}

func resolveSubject(subject, other string) (string, error) {
	subject = strings.TrimSpace(subject)
	switch {
	case subject == "":
		return "", invalid("Subject", "Subject is required.")
	case subject == SubjectOther:
		other = strings.TrimSpace(other)
		if other == "" {
			return "", invalid("SubjectOther", "Please enter the subject.")
		}
		if len(other) > 100 {
			return "", invalid("SubjectOther", "Subject must be at most 100 characters.")
		}
		if strings.EqualFold(other, SubjectAll) {
			return "", invalid("SubjectOther", `"All" cannot be used as a subject.`)
		}
		return other, nil
	case IsListedSubject(subject):
		return subject, nil
	default:
		return "", invalid("Subject", "Choose a subject from the list, or Other.")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateGroup validates in and stores a new group whose creator and only
// member is identity.
func (s *Service) CreateGroup(ctx context.Context, identity string, in GroupInput) (models.Group, error) {
	if identity == "" {
		return models.Group{}, invalid("Creator", "You must be signed in to create a group.")
	}
	info, err := in.normalize()
	if err != nil {
		return models.Group{}, err
	}

	g, err := s.groups.Create(ctx, models.Group{
		Name:         info.Name,
		Subject:      info.Subject,
		CourseNumber: info.CourseNumber,
		Description:  info.Description,
		VideoLink:    info.VideoLink,
		Creator:      identity,
		ExpiresAt:    info.ExpiresAt,
	})
	if err != nil {
		return models.Group{}, &StorageError{Op: "create group", Err: err}
	}
	return g, nil
}

// EditGroup replaces the group's details. Only the creator may edit.
// Concurrent edits are last-write-wins.
func (s *Service) EditGroup(ctx context.Context, identity string, groupID primitive.ObjectID, in GroupInput) (models.Group, error) {
	g, err := s.ManagedGroup(ctx, identity, groupID)
	if err != nil {
		return models.Group{}, err
	}
	info, err := in.normalize()
	if err != nil {
		return models.Group{}, err
	}
	if err := s.groups.UpdateInfo(ctx, g.ID, info); err != nil {
		return models.Group{}, storageErr("update group", err)
	}

	g.Name = info.Name
	g.Subject = info.Subject
	g.CourseNumber = info.CourseNumber
	g.Description = info.Description
	g.VideoLink = info.VideoLink
	g.ExpiresAt = info.ExpiresAt
	return g, nil
}

// DeleteGroup removes the group and everything attached to it. Only the
// creator may delete. Returns the number of attachment files removed.
func (s *Service) DeleteGroup(ctx context.Context, identity string, groupID primitive.ObjectID) (int, error) {
	g, err := s.ManagedGroup(ctx, identity, groupID)
	if err != nil {
		return 0, err
	}
	return s.CascadeDelete(ctx, g.ID)
}

// ListGroups returns visible groups ordered by name. subject "" or "All"
// lists every subject; "Other" lists groups with a free-text subject.
func (s *Service) ListGroups(ctx context.Context, subject string) ([]models.Group, error) {
	var f groupstore.Filter
	switch subject = strings.TrimSpace(subject); {
	case subject == "" || subject == SubjectAll:
	case subject == SubjectOther:
		f.ExcludeSubjects = Subjects
	default:
		f.Subject = subject
	}

	groups, err := s.groups.ListActive(ctx, f, s.now())
	if err != nil {
		return nil, &StorageError{Op: "list groups", Err: err}
	}
	return groups, nil
}

// Group resolves a visible group: not expired and not being deleted.
func (s *Service) Group(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, storageErr("load group", err)
	}
	if g.PendingDelete || g.IsExpired(s.now()) {
		return models.Group{}, ErrNotFound
	}
	return g, nil
}

// MemberGroup resolves a visible group that identity belongs to.
func (s *Service) MemberGroup(ctx context.Context, identity string, groupID primitive.ObjectID) (models.Group, error) {
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if !grouppolicy.CanAccess(g, identity) {
		return models.Group{}, ErrForbidden
	}
	return g, nil
}

// ManagedGroup resolves a visible group that identity created.
func (s *Service) ManagedGroup(ctx context.Context, identity string, groupID primitive.ObjectID) (models.Group, error) {
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if !grouppolicy.CanManage(g, identity) {
		return models.Group{}, ErrForbidden
	}
	return g, nil
}
