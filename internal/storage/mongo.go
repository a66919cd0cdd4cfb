package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gigswap-bot/internal/domain"
)

// MongoStore — реализация Store поверх MongoDB.
type MongoStore struct {
	client   *mongo.Client
	listings *mongo.Collection
	reviews  *mongo.Collection
}

// listingDoc — формат хранения объявления в коллекции.
type listingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ChatID      int64              `bson:"chatId"`
	EventName   string             `bson:"eventName"`
	Quantity    string             `bson:"quantity"`
	EventDate   string             `bson:"eventDate"`
	Location    string             `bson:"location"`
	Category    string             `bson:"category"`
	Price       string             `bson:"price"`
	UniqueID    string             `bson:"uniqueId"`
	LastUpdated time.Time          `bson:"lastUpdated"`
}

// reviewDoc — формат хранения отзыва в коллекции.
type reviewDoc struct {
	ReviewID     string    `bson:"reviewId"`
	BuyerChatID  int64     `bson:"buyerChatId"`
	SellerChatID int64     `bson:"sellerChatId"`
	Rating       int       `bson:"rating"`
	Timestamp    time.Time `bson:"timestamp"`
}

// NewMongoStore подключается к MongoDB и возвращает готовое хранилище.
// Подключение проверяется через Ping, чтобы ошибки конфигурации
// проявлялись при старте, а не при первом запросе.
func NewMongoStore(ctx context.Context, uri, database, listingsColl, reviewsColl string) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetServerSelectionTimeout(60 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:   client,
		listings: db.Collection(listingsColl),
		reviews:  db.Collection(reviewsColl),
	}, nil
}

// Close разрывает соединение с MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// listingFilter переводит ListingFilter в BSON-фильтр.
func listingFilter(f ListingFilter) bson.M {
	filter := bson.M{}
	if f.OwnerChatID != nil {
		filter["chatId"] = *f.OwnerChatID
	}
	if f.EventName != "" {
		// Подстрока без учета регистра; пользовательский ввод экранируется,
		// чтобы он не интерпретировался как регулярное выражение.
		filter["eventName"] = bson.M{"$regex": regexp.QuoteMeta(f.EventName), "$options": "i"}
	}
	return filter
}

// InsertListing сохраняет объявление и возвращает его с присвоенным ID.
func (s *MongoStore) InsertListing(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	doc := listingDoc{
		ID:          primitive.NewObjectID(),
		ChatID:      l.OwnerChatID,
		EventName:   l.EventName,
		Quantity:    l.Quantity,
		EventDate:   l.EventDate,
		Location:    l.Location,
		Category:    l.Category,
		Price:       l.Price,
		UniqueID:    l.ShareToken,
		LastUpdated: l.UpdatedAt,
	}
	if _, err := s.listings.InsertOne(ctx, doc); err != nil {
		return domain.Listing{}, fmt.Errorf("failed to insert listing: %w", err)
	}
	l.ID = doc.ID.Hex()
	return l, nil
}

// FindListings возвращает страницу объявлений по фильтру.
func (s *MongoStore) FindListings(ctx context.Context, f ListingFilter, skip, limit int64) ([]domain.Listing, error) {
	opts := options.Find().SetSkip(skip)
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := s.listings.Find(ctx, listingFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cur.Close(ctx)

	var result []domain.Listing
	for cur.Next(ctx) {
		var doc listingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}
		result = append(result, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return result, nil
}

// CountListings возвращает количество объявлений по фильтру.
func (s *MongoStore) CountListings(ctx context.Context, f ListingFilter) (int64, error) {
	count, err := s.listings.CountDocuments(ctx, listingFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// DeleteListing удаляет объявление по hex-представлению его ObjectID.
func (s *MongoStore) DeleteListing(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid listing id %q: %w", id, err)
	}
	res, err := s.listings.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindListingByToken находит объявление по share-токену.
func (s *MongoStore) FindListingByToken(ctx context.Context, token string) (domain.Listing, error) {
	var doc listingDoc
	err := s.listings.FindOne(ctx, bson.M{"uniqueId": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Listing{}, ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to find listing by token: %w", err)
	}
	return doc.toDomain(), nil
}

// InsertReview сохраняет отзыв.
func (s *MongoStore) InsertReview(ctx context.Context, r domain.Review) error {
	doc := reviewDoc{
		ReviewID:     r.ID,
		BuyerChatID:  r.BuyerChatID,
		SellerChatID: r.SellerChatID,
		Rating:       r.Rating,
		Timestamp:    r.CreatedAt,
	}
	if _, err := s.reviews.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// FindReviews возвращает страницу отзывов о продавце.
func (s *MongoStore) FindReviews(ctx context.Context, sellerChatID int64, skip, limit int64) ([]domain.Review, error) {
	opts := options.Find().SetSkip(skip)
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := s.reviews.Find(ctx, bson.M{"sellerChatId": sellerChatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cur.Close(ctx)

	var result []domain.Review
	for cur.Next(ctx) {
		var doc reviewDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		result = append(result, domain.Review{
			ID:           doc.ReviewID,
			BuyerChatID:  doc.BuyerChatID,
			SellerChatID: doc.SellerChatID,
			Rating:       doc.Rating,
			CreatedAt:    doc.Timestamp,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return result, nil
}

// CountReviews возвращает количество отзывов о продавце.
func (s *MongoStore) CountReviews(ctx context.Context, sellerChatID int64) (int64, error) {
	count, err := s.reviews.CountDocuments(ctx, bson.M{"sellerChatId": sellerChatID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

func (d listingDoc) toDomain() domain.Listing {
	return domain.Listing{
		ID:          d.ID.Hex(),
		OwnerChatID: d.ChatID,
		EventName:   d.EventName,
		Quantity:    d.Quantity,
		EventDate:   d.EventDate,
		Location:    d.Location,
		Category:    d.Category,
		Price:       d.Price,
		ShareToken:  d.UniqueID,
		UpdatedAt:   d.LastUpdated,
	}
}
