package lifecycle

import (
	"context"
	"errors"

	"github.com/dalemusser/studyhub/internal/app/system/txn"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CascadeDelete removes a group with its messages, tasks and attachment
// files, and returns how many files were removed.
//
// The group is marked pending_delete first, which hides it from every
// read. File removal is best-effort: failures are logged and not counted,
// and files already missing from storage are skipped. Records are then
// removed in one transaction (sequentially on servers without
// transactions). If anything fails after the mark, the group stays hidden
// and the next Sweep finishes the job. A group another caller removed in
// the meantime reports ErrNotFound.
func (s *Service) CascadeDelete(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	if err := s.groups.MarkPendingDelete(ctx, groupID); err != nil {
		return 0, storageErr("mark group for deletion", err)
	}

	attachments, err := s.messages.ListAttachments(ctx, groupID)
	if err != nil {
		return 0, &StorageError{Op: "list attachments", Err: err}
	}

	removed := 0
	for _, a := range attachments {
		if err := s.files.Delete(ctx, a.Path); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.log.Debug("attachment already gone",
					zap.String("group_id", groupID.Hex()),
					zap.String("path", a.Path))
				continue
			}
			s.log.Warn("attachment delete failed; leaving file behind",
				zap.String("group_id", groupID.Hex()),
				zap.String("path", a.Path),
				zap.Error(err))
			continue
		}
		removed++
	}

	var msgs, tasks int64
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var err error
		if msgs, err = s.messages.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if tasks, err = s.tasks.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		n, err := s.groups.Delete(ctx, groupID)
		if err != nil {
			return err
		}
		if n == 0 {
			// Removed by a concurrent cascade after our mark.
			return ErrNotFound
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return removed, ErrNotFound
	}
	if err != nil {
		return removed, &StorageError{Op: "delete group records", Err: err}
	}

	s.log.Info("group deleted",
		zap.String("group_id", groupID.Hex()),
		zap.Int64("messages", msgs),
		zap.Int64("tasks", tasks),
		zap.Int("files_removed", removed),
		zap.Int("files_attached", len(attachments)))
	return removed, nil
}

// SweepResult counts what a sweep removed.
type SweepResult struct {
	Groups int
	Files  int
}

// Sweep cascade-deletes every expired group and every group whose earlier
// deletion was interrupted. A failure on one group does not stop the
// others; all failures are returned joined.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	groups, err := s.groups.ListSweepable(ctx, s.now())
	if err != nil {
		return res, &StorageError{Op: "list expired groups", Err: err}
	}

	var errs []error
	for _, g := range groups {
		files, err := s.CascadeDelete(ctx, g.ID)
		res.Files += files
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Removed by a concurrent sweep or delete.
				continue
			}
			s.log.Error("sweep: group delete failed",
				zap.String("group_id", g.ID.Hex()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		res.Groups++
	}
	return res, errors.Join(errs...)
}
