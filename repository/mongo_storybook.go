package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vnkhanh/e-storybook-backend/models"
)

const (
	storybookCollection = "storybooks"
	likeCollection      = "storybook_likes"
)

// mongoStorybookRepository lưu trang nhúng trong document storybook
type mongoStorybookRepository struct {
	books *mongo.Collection
	likes *mongo.Collection
}

func NewMongoStorybookRepository(db *mongo.Database) StorybookRepository {
	return &mongoStorybookRepository{
		books: db.Collection(storybookCollection),
		likes: db.Collection(likeCollection),
	}
}

// EnsureIndexes tạo index cho các truy vấn danh sách và lượt thích
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	bookIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_author_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_status_created"),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_slug"),
		},
	}
	if _, err := db.Collection(storybookCollection).Indexes().CreateMany(ctx, bookIndexes); err != nil {
		return errors.Wrap(err, "create storybook indexes")
	}
	likeIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "storybookId", Value: 1}},
			Options: options.Index().SetName("uniq_user_storybook").SetUnique(true),
		},
	}
	if _, err := db.Collection(likeCollection).Indexes().CreateMany(ctx, likeIndexes); err != nil {
		return errors.Wrap(err, "create like indexes")
	}
	return nil
}

func listFilter(f ListFilter) bson.M {
	filter := bson.M{}
	if f.AuthorID != "" {
		filter["authorId"] = f.AuthorID
	}
	if f.AgeGroup != "" {
		filter["ageGroup"] = f.AgeGroup
	}
	if f.Language != "" {
		filter["language"] = f.Language
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.IsPublic != nil {
		filter["isPublic"] = *f.IsPublic
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	return filter
}

func (r *mongoStorybookRepository) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	filter := listFilter(f)

	total, err := r.books.CountDocuments(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "count storybooks")
	}

	books := make([]models.Storybook, 0, f.Limit)
	if total == 0 {
		return &ListResult{Books: books, Total: 0}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))
	cur, err := r.books.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list storybooks")
	}
	if err := cur.All(ctx, &books); err != nil {
		return nil, errors.Wrap(err, "decode storybooks")
	}
	for i := range books {
		attachPages(&books[i])
	}
	return &ListResult{Books: books, Total: total}, nil
}

// attachPages gán lại khóa ngoại không được lưu trong document
func attachPages(b *models.Storybook) {
	for i := range b.Pages {
		b.Pages[i].StorybookID = b.ID
	}
}

func (r *mongoStorybookRepository) Get(ctx context.Context, id string) (*models.Storybook, error) {
	var book models.Storybook
	err := r.books.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get storybook %s", id)
	}
	attachPages(&book)
	return &book, nil
}

func (r *mongoStorybookRepository) Create(ctx context.Context, book *models.Storybook) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
	if book.Pages == nil {
		book.Pages = []models.StoryPage{}
	}
	if _, err := r.books.InsertOne(ctx, book); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "create storybook")
	}
	return nil
}

func (r *mongoStorybookRepository) Save(ctx context.Context, book *models.Storybook) error {
	book.UpdatedAt = time.Now()
	if book.Pages == nil {
		book.Pages = []models.StoryPage{}
	}
	res, err := r.books.ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	if err != nil {
		return errors.Wrap(err, "replace storybook")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoStorybookRepository) SavePage(ctx context.Context, bookID string, page *models.StoryPage) error {
	now := time.Now()
	page.UpdatedAt = now
	res, err := r.books.UpdateOne(ctx,
		bson.M{"_id": bookID, "pages.pageNumber": page.PageNumber},
		bson.M{"$set": bson.M{
			"pages.$.text":        page.Text,
			"pages.$.imageUrl":    page.ImageURL,
			"pages.$.imagePrompt": page.ImagePrompt,
			"pages.$.audioUrl":    page.AudioURL,
			"pages.$.updatedAt":   now,
			"updatedAt":           now,
		}},
	)
	if err != nil {
		return errors.Wrap(err, "update page")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoStorybookRepository) Delete(ctx context.Context, id string) error {
	res, err := r.books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete storybook")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := r.likes.DeleteMany(ctx, bson.M{"storybookId": id}); err != nil {
		return errors.Wrap(err, "delete likes")
	}
	return nil
}

type counters struct {
	ViewCount int `bson:"viewCount"`
	LikeCount int `bson:"likeCount"`
}

func (r *mongoStorybookRepository) incr(ctx context.Context, filter bson.M, field string, by int) (*counters, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"viewCount": 1, "likeCount": 1})
	var c counters
	err := r.books.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{field: by}}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "increment %s", field)
	}
	return &c, nil
}

func (r *mongoStorybookRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	c, err := r.incr(ctx, bson.M{"_id": id}, "viewCount", 1)
	if err != nil {
		return 0, err
	}
	return c.ViewCount, nil
}

func (r *mongoStorybookRepository) AddLike(ctx context.Context, userID, bookID string) (int, error) {
	n, err := r.books.CountDocuments(ctx, bson.M{"_id": bookID})
	if err != nil {
		return 0, errors.Wrap(err, "find storybook")
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	_, err = r.likes.InsertOne(ctx, models.StorybookLike{UserID: userID, StorybookID: bookID, CreatedAt: time.Now()})
	if mongo.IsDuplicateKeyError(err) {
		return 0, ErrAlreadyLiked
	}
	if err != nil {
		return 0, errors.Wrap(err, "create like")
	}
	c, err := r.incr(ctx, bson.M{"_id": bookID}, "likeCount", 1)
	if err != nil {
		return 0, err
	}
	return c.LikeCount, nil
}

func (r *mongoStorybookRepository) RemoveLike(ctx context.Context, userID, bookID string) (int, error) {
	res, err := r.likes.DeleteOne(ctx, bson.M{"userId": userID, "storybookId": bookID})
	if err != nil {
		return 0, errors.Wrap(err, "delete like")
	}
	if res.DeletedCount == 0 {
		return 0, ErrNotLiked
	}
	c, err := r.incr(ctx, bson.M{"_id": bookID, "likeCount": bson.M{"$gt": 0}}, "likeCount", -1)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.LikeCount, nil
}

func (r *mongoStorybookRepository) AuthorStats(ctx context.Context, authorID string) (*models.AuthorStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"authorId": authorID}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalBooks": bson.M{"$sum": 1},
			"publishedBooks": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusPublished}}, 1, 0},
			}},
			"totalViews": bson.M{"$sum": "$viewCount"},
			"totalLikes": bson.M{"$sum": "$likeCount"},
			"joinDate":   bson.M{"$min": "$createdAt"},
		}}},
	}
	cur, err := r.books.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "author stats")
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalBooks     int64      `bson:"totalBooks"`
		PublishedBooks int64      `bson:"publishedBooks"`
		TotalViews     int64      `bson:"totalViews"`
		TotalLikes     int64      `bson:"totalLikes"`
		JoinDate       *time.Time `bson:"joinDate"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode author stats")
	}
	stats := &models.AuthorStats{}
	if len(rows) > 0 {
		stats.TotalBooks = rows[0].TotalBooks
		stats.PublishedBooks = rows[0].PublishedBooks
		stats.TotalViews = rows[0].TotalViews
		stats.TotalLikes = rows[0].TotalLikes
		stats.JoinDate = rows[0].JoinDate
	}
	return stats, nil
}
