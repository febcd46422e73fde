package lifecycle

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MembershipResult is the outcome of a join or leave that did not fail.
type MembershipResult int

const (
	Joined MembershipResult = iota + 1
	AlreadyMember
	Left
	NotMember
)

func (r MembershipResult) String() string {
	switch r {
	case Joined:
		return "joined"
	case AlreadyMember:
		return "already a member"
	case Left:
		return "left"
	case NotMember:
		return "not a member"
	}
	return "unknown"
}

// Join adds identity to the roster. The roster update is a single
// conditional $push, so concurrent joins and leaves on the same group do
// not overwrite each other. Joining twice reports AlreadyMember.
func (s *Service) Join(ctx context.Context, identity string, groupID primitive.ObjectID) (MembershipResult, error) {
	if identity == "" {
		return 0, ErrForbidden
	}
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if g.HasMember(identity) {
		return AlreadyMember, nil
	}

	added, err := s.groups.AddMember(ctx, g.ID, identity)
	if err != nil {
		return 0, &StorageError{Op: "join group", Err: err}
	}
	if added {
		return Joined, nil
	}
	return s.unchanged(ctx, g.ID, AlreadyMember)
}

// Leave removes identity from the roster with a conditional $pull.
// Leaving a group one is not in reports NotMember and changes nothing.
// The creator may leave; they keep edit and delete rights.
func (s *Service) Leave(ctx context.Context, identity string, groupID primitive.ObjectID) (MembershipResult, error) {
	if identity == "" {
		return 0, ErrForbidden
	}
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if !g.HasMember(identity) {
		return NotMember, nil
	}

	removed, err := s.groups.RemoveMember(ctx, g.ID, identity)
	if err != nil {
		return 0, &StorageError{Op: "leave group", Err: err}
	}
	if removed {
		return Left, nil
	}
	return s.unchanged(ctx, g.ID, NotMember)
}

// unchanged decides what an update that matched nothing means: another
// request got there first (result), or the group went away meanwhile.
func (s *Service) unchanged(ctx context.Context, groupID primitive.ObjectID, result MembershipResult) (MembershipResult, error) {
	if _, err := s.Group(ctx, groupID); err != nil {
		return 0, err
	}
	return result, nil
}
