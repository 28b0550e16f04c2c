package mongo

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ErrNotConnected is returned by Database before Connect has succeeded.
var ErrNotConnected = errors.New("document store is not connected")

// Store owns the MongoDB client and the selected database. It is created once
// in main and handed to every repository; there is no package level handle.
type Store struct {
	uri    string
	dbName string

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(uri, dbName string) *Store {
	return &Store{uri: uri, dbName: dbName}
}

// Connect opens the client, verifies it with a ping, selects the database and
// creates the secondary indexes.
func (s *Store) Connect(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return err
	}

	db := client.Database(s.dbName)

	s.mu.Lock()
	s.client = client
	s.db = db
	s.mu.Unlock()

	indexCtx, indexCancel := context.WithTimeout(ctx, time.Minute)
	defer indexCancel()
	if err := EnsureIndexes(indexCtx, db); err != nil {
		return err
	}

	log.Infof("connected to mongodb database [%s]", s.dbName)
	return nil
}

// Database returns the handle selected by Connect.
func (s *Store) Database() (*mongo.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotConnected
	}
	return s.db, nil
}

// MustDatabase is Database for wiring code that runs after a successful Connect.
func (s *Store) MustDatabase() *mongo.Database {
	db, err := s.Database()
	if err != nil {
		panic(err)
	}
	return db
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client. Closing a store that never connected is a no-op.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.db = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the secondary indexes of every collection. It is safe
// to call repeatedly; conflicts with already existing indexes are ignored.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{userCollectionName, userIndexes()},
		{sessionCollectionName, sessionIndexes()},
		{repImageCollectionName, repImageIndexes()},
		{connectionCollectionName, connectionIndexes()},
	}

	for _, e := range ensure {
		_, err := db.Collection(e.collection).Indexes().CreateMany(ctx, e.models)
		if err != nil && !isIndexConflict(err) {
			return err
		}
		if err != nil {
			log.Debugf("indexes for [%s] already exist: %s", e.collection, err)
		}
	}
	return nil
}

// isIndexConflict matches IndexAlreadyExists, IndexOptionsConflict and
// IndexKeySpecsConflict.
func isIndexConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(68) || se.HasErrorCode(85) || se.HasErrorCode(86)
}
