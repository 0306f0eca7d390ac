package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/models"
)

// MongoIssues persists issues as single documents so every guarded
// mutation is one conditional UpdateOne/FindOneAndUpdate.
type MongoIssues struct {
	col *mongo.Collection
}

func NewMongoIssues(col *mongo.Collection) *MongoIssues {
	return &MongoIssues{col: col}
}

func (s *MongoIssues) Insert(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, issue)
	return err
}

func (s *MongoIssues) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *MongoIssues) List(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Reporter != "" {
		filter["reportedBy"] = f.Reporter
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	order := -1
	if f.Sort == "oldest" {
		order = 1
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: order}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (s *MongoIssues) listAll(ctx context.Context, filter bson.M, limit int64) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}
	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *MongoIssues) ListByReporter(ctx context.Context, reporter string) ([]models.Issue, error) {
	return s.listAll(ctx, bson.M{"reportedBy": reporter}, 0)
}

func (s *MongoIssues) ListByAssignee(ctx context.Context, assignee string) ([]models.Issue, error) {
	return s.listAll(ctx, bson.M{"assignedTo": assignee}, 0)
}

// guardResult maps a zero-match conditional update to ErrNotFound or
// ErrGuardFailed depending on whether the document exists at all.
func (s *MongoIssues) guardResult(ctx context.Context, id primitive.ObjectID) error {
	count, err := s.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrGuardFailed
}

func (s *MongoIssues) UpdatePendingFields(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*models.Issue, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}

	filter := bson.M{"_id": id, "status": models.StatusPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, s.guardResult(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *MongoIssues) Delete(ctx context.Context, id primitive.ObjectID, onlyPending bool) error {
	filter := bson.M{"_id": id}
	if onlyPending {
		filter["status"] = models.StatusPending
	}
	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		if !onlyPending {
			return ErrNotFound
		}
		return s.guardResult(ctx, id)
	}
	return nil
}

func (s *MongoIssues) AddVote(ctx context.Context, id primitive.ObjectID, voter string) (*models.Issue, error) {
	// Single atomic write: the filter re-checks the ledger guards so a
	// racing duplicate simply matches nothing.
	filter := bson.M{
		"_id":        id,
		"reportedBy": bson.M{"$ne": voter},
		"voters":     bson.M{"$ne": voter},
	}
	update := bson.M{
		"$addToSet": bson.M{"voters": voter},
		"$inc":      bson.M{"voteCount": 1},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, s.guardResult(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *MongoIssues) Transition(ctx context.Context, id primitive.ObjectID, from, to models.IssueStatus, assignee string, entry models.TimelineEntry) (*models.Issue, error) {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	if assignee != "" {
		set["assignedTo"] = assignee
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"timeline": entry},
	}
	filter := bson.M{"_id": id, "status": from}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, s.guardResult(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *MongoIssues) SetPriorityHigh(ctx context.Context, id primitive.ObjectID, entry models.TimelineEntry) (*models.Issue, error) {
	filter := bson.M{"_id": id, "priority": bson.M{"$ne": models.PriorityHigh}}
	update := bson.M{
		"$set":  bson.M{"priority": models.PriorityHigh, "updatedAt": time.Now()},
		"$push": bson.M{"timeline": entry},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		// Already high: idempotent, return the current document.
		return s.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *MongoIssues) countBy(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (s *MongoIssues) CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error) {
	raw, err := s.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.IssueStatus]int64, len(raw))
	for k, v := range raw {
		counts[models.IssueStatus(k)] = v
	}
	return counts, nil
}

func (s *MongoIssues) CountByPriority(ctx context.Context) (map[models.IssuePriority]int64, error) {
	raw, err := s.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.IssuePriority]int64, len(raw))
	for k, v := range raw {
		counts[models.IssuePriority(k)] = v
	}
	return counts, nil
}

func (s *MongoIssues) CountByCategory(ctx context.Context) (map[models.IssueCategory]int64, error) {
	raw, err := s.countBy(ctx, "category")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.IssueCategory]int64, len(raw))
	for k, v := range raw {
		counts[models.IssueCategory(k)] = v
	}
	return counts, nil
}

func (s *MongoIssues) Latest(ctx context.Context, n int) ([]models.Issue, error) {
	return s.listAll(ctx, bson.M{}, int64(n))
}

type MongoUsers struct {
	col *mongo.Collection
}

func NewMongoUsers(col *mongo.Collection) *MongoUsers {
	return &MongoUsers{col: col}
}

func (s *MongoUsers) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUsers) list(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUsers) List(ctx context.Context, search string) ([]models.User, error) {
	filter := bson.M{}
	if search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"email": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	return s.list(ctx, filter)
}

func (s *MongoUsers) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.list(ctx, bson.M{"role": role})
}

func (s *MongoUsers) update(ctx context.Context, filter, set bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUsers) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"role": role})
}

func (s *MongoUsers) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"blocked": blocked})
}

func (s *MongoUsers) SetPremium(ctx context.Context, email string) error {
	_, err := s.update(ctx, bson.M{"email": email}, bson.M{"isPremium": true})
	return err
}

func (s *MongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error) {
	return s.update(ctx, bson.M{"_id": id}, bson.M{"name": name})
}

func (s *MongoUsers) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

type MongoPayments struct {
	col *mongo.Collection
}

func NewMongoPayments(col *mongo.Collection) *MongoPayments {
	return &MongoPayments{col: col}
}

func (s *MongoPayments) Insert(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, payment)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoPayments) FindBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.col.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *MongoPayments) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	filter := bson.M{}
	if f.Purpose != "" {
		filter["purpose"] = f.Purpose
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Payer != "" {
		filter["payerId"] = f.Payer
	}

	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *MongoPayments) Finalize(ctx context.Context, sessionID string, to models.PaymentStatus) (*models.Payment, error) {
	filter := bson.M{"sessionId": sessionID, "status": models.PaymentPending}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment models.Payment
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		count, countErr := s.col.CountDocuments(ctx, bson.M{"sessionId": sessionID})
		if countErr != nil {
			return nil, countErr
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrGuardFailed
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *MongoPayments) ConfirmedTotal(ctx context.Context) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"status": models.PaymentConfirmed}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *MongoPayments) Latest(ctx context.Context, n int) ([]models.Payment, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(n))
	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// EnsureIndexes creates the unique indexes the guard semantics rely on:
// one account per email, one payment per gateway session.
func EnsureIndexes(ctx context.Context, users, payments *mongo.Collection) error {
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
