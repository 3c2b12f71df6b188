package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/chat-gateway/internal/utils/platformerrors"
)

type fakeRepo struct {
	created []*Feedback
	err     error
}

func (f *fakeRepo) Create(_ context.Context, fb *Feedback) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, fb)
	return nil
}

func (f *fakeRepo) FindByOwner(_ context.Context, ownerID string) ([]*Feedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*Feedback
	for _, fb := range f.created {
		if fb.OwnerID == ownerID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func TestCaptureAssignsIDAndOwner(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	fb, err := svc.Capture(context.Background(), "user-1", &Feedback{
		Rating:         RatingUp,
		Comment:        "clear answer",
		ConversationID: "conv_abc123",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^fb_[a-z0-9]{16}$`, fb.PublicID)
	assert.Equal(t, "user-1", fb.OwnerID)
	require.Len(t, repo.created, 1)
}

func TestCaptureRejectsInvalidRating(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Capture(context.Background(), "user-1", &Feedback{Rating: "meh"})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestCaptureRejectsNegativeMessageIndex(t *testing.T) {
	svc := NewService(&fakeRepo{})
	idx := -1

	_, err := svc.Capture(context.Background(), "user-1", &Feedback{Rating: RatingDown, MessageIndex: &idx})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestCaptureWrapsRepositoryFailure(t *testing.T) {
	svc := NewService(&fakeRepo{err: errors.New("disk full")})

	_, err := svc.Capture(context.Background(), "user-1", &Feedback{Rating: RatingUp})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
}
