package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// DefaultMongoDatabase is the database used when MongoOptions.Database is
// empty.
const DefaultMongoDatabase = "sheetcalc"

const workbookCollection = "workbooks"

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI      string // mongodb:// connection string
	Database string
}

// MongoStore keeps one document per workbook in MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type workbookDoc struct {
	ID        string    `bson:"_id"`
	Version   string    `bson:"version"`
	Cells     []cellDoc `bson:"cells"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type cellDoc struct {
	Name     string `bson:"name"`
	Contents string `bson:"contents"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo URI is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(workbookCollection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*workbook.Workbook, error) {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return nil, err
	}
	var doc workbookDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeWorkbookNotFound, "workbook %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find workbook %s: %w", id, err)
	}
	return fromDoc(doc), nil
}

func (s *MongoStore) Save(ctx context.Context, id string, wb *workbook.Workbook) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	doc := toDoc(id, clone(wb))
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save workbook %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete workbook %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list workbooks: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list workbooks: %w", err)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDoc(id string, wb *workbook.Workbook) workbookDoc {
	doc := workbookDoc{
		ID:        id,
		Version:   wb.Version,
		Cells:     make([]cellDoc, len(wb.Cells)),
		UpdatedAt: time.Now().UTC(),
	}
	for i, c := range wb.Cells {
		doc.Cells[i] = cellDoc(c)
	}
	return doc
}

func fromDoc(doc workbookDoc) *workbook.Workbook {
	wb := &workbook.Workbook{Version: doc.Version, Cells: make([]workbook.Cell, len(doc.Cells))}
	for i, c := range doc.Cells {
		wb.Cells[i] = workbook.Cell(c)
	}
	return wb
}

var _ Repository = (*MongoStore)(nil)
