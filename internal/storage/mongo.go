package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/avdeev/planner-bot/internal/model"
)

// Collection names inside the planner database.
const (
	notesCollection = "notes"
	tasksCollection = "tasks"
)

// MongoNoteStore persists notes in the notes collection.
type MongoNoteStore struct {
	col *mongo.Collection
}

// NewMongoNoteStore creates a note store over the given database.
func NewMongoNoteStore(db *mongo.Database) *MongoNoteStore {
	return &MongoNoteStore{col: db.Collection(notesCollection)}
}

func (s *MongoNoteStore) Add(ctx context.Context, date, text string) error {
	_, err := s.col.InsertOne(ctx, model.Note{Date: date, Text: text})
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (s *MongoNoteStore) ListByDate(ctx context.Context, date string) ([]model.Note, error) {
	return s.find(ctx, bson.M{"date": date})
}

func (s *MongoNoteStore) ListAll(ctx context.Context) ([]model.Note, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoNoteStore) find(ctx context.Context, filter bson.M) ([]model.Note, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer cur.Close(ctx)

	var notes []model.Note
	if err := cur.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

func (s *MongoNoteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}
	return res.DeletedCount, nil
}

// MongoTaskStore persists tasks in the tasks collection. Task ids are
// ObjectIDs exposed to the rest of the system as hex strings.
type MongoTaskStore struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoTaskStore creates a task store over the given database.
func NewMongoTaskStore(db *mongo.Database) *MongoTaskStore {
	return &MongoTaskStore{col: db.Collection(tasksCollection), now: time.Now}
}

// taskDoc is the persistence-side shape of a task; the ObjectID is mapped
// to Task.ID on the way out.
type taskDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	model.Task `bson:",inline"`
}

func (s *MongoTaskStore) Add(ctx context.Context, text, deadline string, chatID int64) (string, error) {
	task := model.Task{
		Text:        text,
		Deadline:    deadline,
		Status:      model.StatusNotDone,
		DateCreated: s.now().Format(model.DateLayout),
		ChatID:      chatID,
	}

	res, err := s.col.InsertOne(ctx, taskDoc{Task: task})
	if err != nil {
		return "", fmt.Errorf("failed to insert task: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoTaskStore) ListByDate(ctx context.Context, date string, chatID int64) ([]model.Task, error) {
	return s.find(ctx, bson.M{"date_created": date, "chat_id": chatID})
}

func (s *MongoTaskStore) ListByChat(ctx context.Context, chatID int64) ([]model.Task, error) {
	return s.find(ctx, bson.M{"chat_id": chatID})
}

func (s *MongoTaskStore) ListAll(ctx context.Context) ([]model.Task, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoTaskStore) find(ctx context.Context, filter bson.M) ([]model.Task, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		t := d.Task
		t.ID = d.ID.Hex()
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *MongoTaskStore) Update(ctx context.Context, id string, upd TaskUpdate) error {
	set := bson.M{}
	if upd.Text != nil {
		set["text"] = *upd.Text
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if len(set) == 0 {
		return nil
	}
	return s.updateByID(ctx, id, set)
}

func (s *MongoTaskStore) UpdateReminders(ctx context.Context, id string, r model.Reminders) error {
	return s.updateByID(ctx, id, bson.M{"reminders": r})
}

func (s *MongoTaskStore) updateByID(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *MongoTaskStore) DeleteByDate(ctx context.Context, date string, chatID int64) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"date_created": date, "chat_id": chatID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoTaskStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return res.DeletedCount, nil
}
