package lifecycle

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dalemusser/studyhub/internal/app/system/filestore"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxMessageLength caps chat text, in characters.
const MaxMessageLength = 2000

// Upload is a file attached to a chat message.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// MessageInput is a chat post. Content may be empty when File is set.
type MessageInput struct {
	Content string
	File    *Upload
}

// PostMessage stores a chat message from a roster member. Markup is
// stripped from the text.
func (s *Service) PostMessage(ctx context.Context, identity string, groupID primitive.ObjectID, in MessageInput) (models.Message, error) {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return models.Message{}, err
	}

	content := htmlsanitize.StripTags(in.Content)
	if content == "" && in.File == nil {
		return models.Message{}, invalid("Content", "Enter a message or attach a file.")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return models.Message{}, invalid("Content", "Message must be at most 2000 characters.")
	}

	msg := models.Message{
		ID:      primitive.NewObjectID(),
		GroupID: g.ID,
		Sender:  identity,
		Content: content,
	}
	if in.File != nil {
		att, err := filestore.Save(ctx, s.files, in.File.Name, in.File.Body, in.File.ContentType)
		if err != nil {
			return models.Message{}, &StorageError{Op: "store attachment", Err: err}
		}
		att.URL = AttachmentURL(g.ID, msg.ID)
		msg.File = &att
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		if msg.File != nil {
			if derr := s.files.Delete(ctx, msg.File.Path); derr != nil {
				s.log.Warn("orphaned attachment after failed message insert",
					zap.String("path", msg.File.Path),
					zap.Error(derr))
			}
		}
		return models.Message{}, &StorageError{Op: "create message", Err: err}
	}
	return created, nil
}

// ListMessages returns the group's chat, oldest first, to a roster member.
func (s *Service) ListMessages(ctx context.Context, identity string, groupID primitive.ObjectID) (models.Group, []models.Message, error) {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return models.Group{}, nil, err
	}
	msgs, err := s.messages.ListByGroup(ctx, g.ID)
	if err != nil {
		return models.Group{}, nil, &StorageError{Op: "list messages", Err: err}
	}
	return g, msgs, nil
}

// AttachmentURL is the member-only download route for a message's file.
func AttachmentURL(groupID, msgID primitive.ObjectID) string {
	return fmt.Sprintf("/groups/%s/chat/files/%s", groupID.Hex(), msgID.Hex())
}

// Attachment returns the file reference of one chat message to a roster
// member. Messages without a file do not resolve.
func (s *Service) Attachment(ctx context.Context, identity string, groupID, msgID primitive.ObjectID) (models.Attachment, error) {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return models.Attachment{}, err
	}
	m, err := s.messages.GetInGroup(ctx, g.ID, msgID)
	if err != nil {
		return models.Attachment{}, storageErr("load message", err)
	}
	if !m.HasFile() {
		return models.Attachment{}, ErrNotFound
	}
	return *m.File, nil
}
