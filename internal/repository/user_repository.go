// Package repository provides data access operations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:generate mockgen -destination=mocks/mock_repositories.go -package=mocks micasa/internal/repository CounterRepository,ListingRepository,ReviewRepository,UserRepository

// maxNotifications bounds the embedded notification list.
const maxNotifications = 100

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, uid string, update *models.UpdateProfileRequest) (*models.User, error)
	UpdateRole(ctx context.Context, uid string, role models.Role) (*models.User, error)
	// SetProfileImage stores a new image key and returns the key it replaced.
	SetProfileImage(ctx context.Context, uid, key string) (string, error)
	// Delete removes the user and returns the document as it was at deletion.
	Delete(ctx context.Context, uid string) (*models.User, error)

	// AddToWishlist appends lid only if absent. It reports whether the document changed.
	AddToWishlist(ctx context.Context, uid string, lid int64) (bool, error)
	// RemoveFromWishlist pulls lid only if present. It reports whether the document changed.
	RemoveFromWishlist(ctx context.Context, uid string, lid int64) (bool, error)
	PullFromAllWishlists(ctx context.Context, lid int64) (int64, error)

	PushNotification(ctx context.Context, uid string, n models.Notification) error
	MarkNotificationRead(ctx context.Context, uid string, id primitive.ObjectID) error
	MarkAllNotificationsRead(ctx context.Context, uid string) error
	AppendActivity(ctx context.Context, uid string, entry models.ActivityEntry) error
}

// userRepository implements UserRepository using MongoDB
type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

func userNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrUserNotFound
	}
	return err
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	existing, _ := r.FindByEmail(ctx, user.Email)
	if existing != nil {
		return apperrors.ErrUserAlreadyExists
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Wishlist == nil {
		user.Wishlist = []int64{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		// The unique index catches a concurrent registration with the same email.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrUserAlreadyExists
		}
		return err
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByUID finds a user by their uid
func (r *userRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"uid": uid}).Decode(&user); err != nil {
		return nil, userNotFound(err)
	}
	return &user, nil
}

// FindByEmail finds a user by their email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, userNotFound(err)
	}
	return &user, nil
}

// FindAll returns all users without their activity logs
func (r *userRepository) FindAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"activity": 0, "notifications": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	// Return empty slice instead of nil
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

// Update updates a user's profile fields and preferences
func (r *userRepository) Update(ctx context.Context, uid string, update *models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}

	if update.Email != nil {
		existing, _ := r.FindByEmail(ctx, *update.Email)
		if existing != nil && existing.UID != uid {
			return nil, apperrors.ErrUserAlreadyExists
		}
		set["email"] = *update.Email
	}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.EmailNotifications != nil {
		set["preferences.emailNotifications"] = *update.EmailNotifications
	}
	if update.PushNotifications != nil {
		set["preferences.pushNotifications"] = *update.PushNotifications
	}
	if update.Locale != nil {
		set["preferences.locale"] = *update.Locale
	}
	if update.Currency != nil {
		set["preferences.currency"] = *update.Currency
	}

	return r.findOneAndSet(ctx, uid, set)
}

// UpdateRole sets a user's role
func (r *userRepository) UpdateRole(ctx context.Context, uid string, role models.Role) (*models.User, error) {
	return r.findOneAndSet(ctx, uid, bson.M{"role": role, "updatedAt": time.Now()})
}

func (r *userRepository) findOneAndSet(ctx context.Context, uid string, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"uid": uid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, userNotFound(err)
	}
	return &user, nil
}

func (r *userRepository) SetProfileImage(ctx context.Context, uid, key string) (string, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"profileImage": 1})

	var before struct {
		ProfileImage string `bson:"profileImage"`
	}
	update := bson.M{"$set": bson.M{"profileImage": key, "updatedAt": time.Now()}}
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"uid": uid}, update, opts).Decode(&before); err != nil {
		return "", userNotFound(err)
	}
	return before.ProfileImage, nil
}

func (r *userRepository) Delete(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"uid": uid}).Decode(&user); err != nil {
		return nil, userNotFound(err)
	}
	return &user, nil
}

func (r *userRepository) AddToWishlist(ctx context.Context, uid string, lid int64) (bool, error) {
	filter := bson.M{"uid": uid, "wishlist": bson.M{"$ne": lid}}
	// Pipeline form so a legacy null wishlist is treated as empty.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"wishlist": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$wishlist", bson.A{}}},
				bson.A{lid},
			}},
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *userRepository) RemoveFromWishlist(ctx context.Context, uid string, lid int64) (bool, error) {
	filter := bson.M{"uid": uid, "wishlist": lid}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"wishlist": lid}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// PullFromAllWishlists removes lid from every wishlist and reports how many users changed.
func (r *userRepository) PullFromAllWishlists(ctx context.Context, lid int64) (int64, error) {
	result, err := r.collection.UpdateMany(ctx, bson.M{"wishlist": lid}, bson.M{"$pull": bson.M{"wishlist": lid}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *userRepository) PushNotification(ctx context.Context, uid string, n models.Notification) error {
	update := bson.M{"$push": bson.M{"notifications": bson.M{
		"$each":  bson.A{n},
		"$slice": -maxNotifications,
	}}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"uid": uid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) MarkNotificationRead(ctx context.Context, uid string, id primitive.ObjectID) error {
	filter := bson.M{"uid": uid, "notifications._id": id}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"notifications.$.read": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (r *userRepository) MarkAllNotificationsRead(ctx context.Context, uid string) error {
	filter := bson.M{"uid": uid, "notifications.read": false}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"n.read": false}},
	})

	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"notifications.$[n].read": true}}, opts)
	return err
}

func (r *userRepository) AppendActivity(ctx context.Context, uid string, entry models.ActivityEntry) error {
	update := bson.M{"$push": bson.M{"activity": bson.M{
		"$each":  bson.A{entry},
		"$slice": -models.MaxActivityEntries,
	}}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"uid": uid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
