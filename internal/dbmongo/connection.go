// Package dbmongo holds the document store side of media: the GridFS binary
// store and the images/audios metadata collections.
package dbmongo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"travelgram/internal/config"
)

// MongoClient is the process-wide connection handle. It becomes ready once
// the first ping succeeds; until then every store built on it fails fast.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket

	logger    *zap.Logger
	ready     atomic.Bool
	readyCh   chan struct{}
	readyOnce sync.Once
	stop      context.CancelFunc
}

func NewMongoConnection(c *config.Config, logger *zap.Logger) (*MongoClient, error) {
	uri := c.GetMongoURI()
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(c.MongoDB.ConnectTimeout).
		SetConnectTimeout(c.MongoDB.ConnectTimeout)

	// Connect does not wait for a server; readiness is tracked by the ping loop
	client, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	database := client.Database(c.MongoDB.Database)
	bucket, err := gridfs.NewBucket(database, options.GridFSBucket().SetName(c.MongoDB.BucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFSBucket: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc := &MongoClient{
		Client:   client,
		Database: database,
		GridFS:   bucket,
		logger:   logger,
		readyCh:  make(chan struct{}),
		stop:     cancel,
	}
	go mc.pingUntilReady(ctx, c.MongoDB.ConnectTimeout)
	return mc, nil
}

func (mc *MongoClient) pingUntilReady(ctx context.Context, timeout time.Duration) {
	backoff := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := mc.Client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			mc.markReady()
			mc.logger.Info("mongodb ready", zap.Int("attempts", attempt))
			return
		}
		mc.logger.Warn("mongodb not reachable yet", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}

func (mc *MongoClient) markReady() {
	mc.readyOnce.Do(func() {
		mc.ready.Store(true)
		close(mc.readyCh)
	})
}

func (mc *MongoClient) Ready() bool {
	return mc.ready.Load()
}

// WaitReady blocks until the connection is confirmed or ctx ends
func (mc *MongoClient) WaitReady(ctx context.Context) error {
	select {
	case <-mc.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mc *MongoClient) Close(ctx context.Context) error {
	mc.stop()
	return mc.Client.Disconnect(ctx)
}
