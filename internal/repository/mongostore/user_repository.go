package mongostore

import (
	"context"
	"quizmaster_backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/datatypes"
)

type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection(userCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = model.GenerateUUID()
	}
	if user.Announcements == nil {
		user.Announcements = []model.Announcement{}
	}
	if user.QuizzesCreated == nil {
		user.QuizzesCreated = datatypes.JSONSlice[string]{}
	}
	if user.QuizzesAttempted == nil {
		user.QuizzesAttempted = datatypes.JSONSlice[string]{}
	}
	_, err := r.Col.InsertOne(ctx, user)
	return translateError(err)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.Col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	// 新通知排在前面
	for i, j := 0, len(user.Announcements)-1; i < j; i, j = i+1, j-1 {
		user.Announcements[i], user.Announcements[j] = user.Announcements[j], user.Announcements[i]
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) AddCreatedQuiz(ctx context.Context, userID, quizID string) error {
	update := bson.M{"$addToSet": bson.M{"quizzes_created": quizID}}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update))
}

func (r *UserRepository) RemoveCreatedQuiz(ctx context.Context, userID, quizID string) error {
	update := bson.M{"$pull": bson.M{"quizzes_created": quizID}}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update))
}

func (r *UserRepository) AddAttemptedQuiz(ctx context.Context, userID, attemptID string) error {
	update := bson.M{"$push": bson.M{"quizzes_attempted": attemptID}}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update))
}

func (r *UserRepository) AddAnnouncement(ctx context.Context, userID string, announcement *model.Announcement) error {
	announcement.UserID = userID
	update := bson.M{"$push": bson.M{"announcements": announcement}}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update))
}

func (r *UserRepository) MarkAnnouncementRead(ctx context.Context, userID, announcementID string) error {
	filter := bson.M{"_id": userID, "announcements.id": announcementID}
	update := bson.M{"$set": bson.M{"announcements.$.read": true}}
	return matched(r.Col.UpdateOne(ctx, filter, update))
}

func (r *UserRepository) MarkAllAnnouncementsRead(ctx context.Context, userID string) error {
	update := bson.M{"$set": bson.M{"announcements.$[].read": true}}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": userID}, update))
}

func (r *UserRepository) DeleteAnnouncement(ctx context.Context, userID, announcementID string) error {
	filter := bson.M{"_id": userID, "announcements.id": announcementID}
	update := bson.M{"$pull": bson.M{"announcements": bson.M{"id": announcementID}}}
	return matched(r.Col.UpdateOne(ctx, filter, update))
}
