package repository

import (
	"context"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type MongoDBProductRepositoryImpl struct {
	db *mongo.Database
}

func CreateNewMongoDBProductRepository(db *mongo.Database) ProductRepository {
	return &MongoDBProductRepositoryImpl{db: db}
}

func (r *MongoDBProductRepositoryImpl) GetProductByID(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error) {
	filter := bson.D{{Key: "_id", Value: id}}
	opts := options.FindOne()

	err = r.db.Collection(productsCollection).FindOne(ctx, filter, opts).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return product, errs.ErrProductNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductByID").Msg("")
		return product, err
	}

	return product, nil
}

func (r *MongoDBProductRepositoryImpl) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (products []domain.Product, err error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}

	cursor, err := r.db.Collection(productsCollection).Find(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductsByIDs").Msg("")
		return nil, err
	}

	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &products); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductsByIDs").Msg("")
		return nil, err
	}

	return products, nil
}

func (r *MongoDBProductRepositoryImpl) GetInactiveProductIDs(ctx context.Context) (ids []primitive.ObjectID, err error) {
	filter := bson.D{{Key: "isActive", Value: false}}
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.db.Collection(productsCollection).Find(ctx, filter, opts)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetInactiveProductIDs").Msg("")
		return nil, err
	}

	defer cursor.Close(ctx)

	var products []domain.Product
	if err = cursor.All(ctx, &products); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetInactiveProductIDs").Msg("")
		return nil, err
	}

	ids = make([]primitive.ObjectID, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}

	return ids, nil
}
