package repository

import (
	"context"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollection = "users"

type MongoDBUserRepositoryImpl struct {
	db *mongo.Database
}

func CreateNewMongoDBUserRepository(db *mongo.Database) UserRepository {
	return &MongoDBUserRepositoryImpl{db: db}
}

func (r *MongoDBUserRepositoryImpl) GetUserByID(ctx context.Context, id primitive.ObjectID) (user domain.User, err error) {
	filter := bson.D{{Key: "_id", Value: id}}

	err = r.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return user, errs.ErrUserNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetUserByID").Msg("")
		return user, err
	}

	return user, nil
}

func (r *MongoDBUserRepositoryImpl) SaveCart(ctx context.Context, userID primitive.ObjectID, cart []domain.CartLine) (err error) {
	if cart == nil {
		cart = []domain.CartLine{}
	}

	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "cart", Value: cart}}}}

	result, err := r.db.Collection(usersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SaveCart").Msg("Failed to save cart")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrUserNotFound
	}

	return nil
}

func (r *MongoDBUserRepositoryImpl) AddWishlistItem(ctx context.Context, userID primitive.ObjectID, item domain.WishlistItem) (err error) {
	// the $ne guard keeps one entry per product even under concurrent adds
	filter := bson.D{
		{Key: "_id", Value: userID},
		{Key: "wishlist.product", Value: bson.D{{Key: "$ne", Value: item.Product}}},
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "wishlist", Value: item}}}}

	result, err := r.db.Collection(usersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddWishlistItem").Msg("")
		return
	}

	if result.MatchedCount == 0 {
		return r.ensureUserExists(ctx, userID)
	}

	return nil
}

func (r *MongoDBUserRepositoryImpl) RemoveWishlistItem(ctx context.Context, userID primitive.ObjectID, productID primitive.ObjectID) (err error) {
	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "wishlist", Value: bson.D{{Key: "product", Value: productID}}}}}}

	result, err := r.db.Collection(usersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "RemoveWishlistItem").Msg("")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrUserNotFound
	}

	return nil
}

func (r *MongoDBUserRepositoryImpl) ClearWishlist(ctx context.Context, userID primitive.ObjectID) (err error) {
	filter := bson.D{{Key: "_id", Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "wishlist", Value: []domain.WishlistItem{}}}}}

	result, err := r.db.Collection(usersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ClearWishlist").Msg("")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrUserNotFound
	}

	return nil
}

func (r *MongoDBUserRepositoryImpl) PullProducts(ctx context.Context, productIDs []primitive.ObjectID) (modified int64, err error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	in := bson.D{{Key: "$in", Value: productIDs}}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "cart.product", Value: in}},
		bson.D{{Key: "wishlist.product", Value: in}},
	}}}
	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "cart", Value: bson.D{{Key: "product", Value: in}}},
		{Key: "wishlist", Value: bson.D{{Key: "product", Value: in}}},
	}}}

	result, err := r.db.Collection(usersCollection).UpdateMany(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "PullProducts").Msg("")
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *MongoDBUserRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
		return err
	}

	// Defers ending the session after the transaction is committed or ended
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessionCtx mongo.SessionContext) (interface{}, error) {
		err := fn(sessionCtx)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
		}
		return nil, err
	})

	return err
}

func (r *MongoDBUserRepositoryImpl) ensureUserExists(ctx context.Context, userID primitive.ObjectID) error {
	count, err := r.db.Collection(usersCollection).CountDocuments(ctx, bson.D{{Key: "_id", Value: userID}})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ensureUserExists").Msg("")
		return err
	}

	if count == 0 {
		return errs.ErrUserNotFound
	}

	return nil
}
