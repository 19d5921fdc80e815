package service

import (
	"context"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/events"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareQuizAppendsOneUnreadAnnouncement(t *testing.T) {
	env := newTestEnv(t)
	sender := env.register(t, "alice")
	recipient := env.register(t, "bob")
	quiz := env.createQuiz(t, sender.ID, sampleQuiz())
	ctx := context.Background()

	announcement, err := env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "bob"})
	require.NoError(t, err)
	assert.NotEmpty(t, announcement.ID)
	assert.Equal(t, quiz.ID, announcement.Message)
	assert.Equal(t, "alice", announcement.SentByName)

	list, err := env.users.ListAnnouncements(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.Equal(t, sender.ID, list[0].SentBy)

	profile, err := env.users.GetProfile(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.UnreadCount)
	assert.Contains(t, env.events.types(), events.QuizShared)

	senderList, err := env.users.ListAnnouncements(ctx, sender.ID)
	require.NoError(t, err)
	assert.Empty(t, senderList)
}

func TestShareQuizByEmail(t *testing.T) {
	env := newTestEnv(t)
	sender := env.register(t, "alice")
	recipient := env.register(t, "bob")
	quiz := env.createQuiz(t, sender.ID, sampleQuiz())

	_, err := env.users.ShareQuiz(context.Background(), sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "Bob@Example.com"})
	require.NoError(t, err)

	list, err := env.users.ListAnnouncements(context.Background(), recipient.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestShareQuizErrors(t *testing.T) {
	env := newTestEnv(t)
	sender := env.register(t, "alice")
	other := env.register(t, "bob")
	quiz := env.createQuiz(t, sender.ID, sampleQuiz())
	private := sampleQuiz()
	private.IsPublic = boolPtr(false)
	privateQuiz := env.createQuiz(t, sender.ID, private)
	ctx := context.Background()

	_, err := env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "alice"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "nobody"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.users.ShareQuiz(ctx, sender.ID, "missing", &ShareQuizRequest{Recipient: "bob"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{})
	assert.ErrorIs(t, err, util.ErrValidation)

	// 创建者可以分享自己的私有测验，其他人不行
	_, err = env.users.ShareQuiz(ctx, sender.ID, privateQuiz.ID, &ShareQuizRequest{Recipient: "bob"})
	assert.NoError(t, err)
	_, err = env.users.ShareQuiz(ctx, other.ID, privateQuiz.ID, &ShareQuizRequest{Recipient: "alice"})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestAnnouncementLifecycle(t *testing.T) {
	env := newTestEnv(t)
	sender := env.register(t, "alice")
	recipient := env.register(t, "bob")
	quiz := env.createQuiz(t, sender.ID, sampleQuiz())
	ctx := context.Background()

	first, err := env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "bob"})
	require.NoError(t, err)
	second, err := env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "bob"})
	require.NoError(t, err)

	require.NoError(t, env.users.MarkAnnouncementRead(ctx, recipient.ID, first.ID))
	profile, err := env.users.GetProfile(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.UnreadCount)

	assert.ErrorIs(t, env.users.MarkAnnouncementRead(ctx, recipient.ID, "missing"), util.ErrNotFound)
	assert.ErrorIs(t, env.users.MarkAnnouncementRead(ctx, sender.ID, second.ID), util.ErrNotFound)

	require.NoError(t, env.users.MarkAllAnnouncementsRead(ctx, recipient.ID))
	profile, err = env.users.GetProfile(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, profile.UnreadCount)

	require.NoError(t, env.users.DeleteAnnouncement(ctx, recipient.ID, first.ID))
	list, err := env.users.ListAnnouncements(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	assert.ErrorIs(t, env.users.DeleteAnnouncement(ctx, recipient.ID, first.ID), util.ErrNotFound)
}

func TestDeleteAnnouncementLeavesOthersUntouched(t *testing.T) {
	env := newTestEnv(t)
	sender := env.register(t, "alice")
	recipient := env.register(t, "bob")
	quiz := env.createQuiz(t, sender.ID, sampleQuiz())
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		a, err := env.users.ShareQuiz(ctx, sender.ID, quiz.ID, &ShareQuizRequest{Recipient: "bob"})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	profile, err := env.users.GetProfile(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, profile.UnreadCount)

	require.NoError(t, env.users.DeleteAnnouncement(ctx, recipient.ID, ids[1]))

	list, err := env.users.ListAnnouncements(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	remaining := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{ids[0], ids[2]}, remaining)
	for _, a := range list {
		assert.False(t, a.Read)
		assert.Equal(t, sender.ID, a.SentBy)
		assert.Equal(t, quiz.ID, a.Message)
	}
}
