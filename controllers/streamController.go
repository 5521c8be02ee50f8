package controllers

import (
	"context"
	"io"
	"sync"

	"backend/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeEvent tells a connected client which collection changed so it can
// refetch. Payloads stay small on purpose; the REST endpoints remain the
// source of truth.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Operation  string `json:"operation"`
}

var streamedCollections = []string{
	"products", "providers", "workers", "stock",
	"shifts", "sales", "loans", "cashflow_entries",
}

var broadcaster = struct {
	sync.Mutex
	subscribers map[chan ChangeEvent]struct{}
}{subscribers: make(map[chan ChangeEvent]struct{})}

func subscribe() chan ChangeEvent {
	ch := make(chan ChangeEvent, 16)
	broadcaster.Lock()
	broadcaster.subscribers[ch] = struct{}{}
	broadcaster.Unlock()
	return ch
}

func unsubscribe(ch chan ChangeEvent) {
	broadcaster.Lock()
	delete(broadcaster.subscribers, ch)
	broadcaster.Unlock()
}

func broadcast(ev ChangeEvent) {
	broadcaster.Lock()
	defer broadcaster.Unlock()
	for ch := range broadcaster.subscribers {
		select {
		case ch <- ev:
		default: // slow client, drop rather than block the watcher
		}
	}
}

// StartChangeStream watches the database for writes to the streamed
// collections and fans them out to SSE subscribers. Runs until ctx is
// cancelled; requires a replica set, like the transactions do.
func StartChangeStream(ctx context.Context, log *logrus.Logger) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ns.coll": bson.M{"$in": streamedCollections}}}},
	}
	stream, err := config.DB.Watch(ctx, pipeline, options.ChangeStream())
	if err != nil {
		return err
	}
	go func() {
		defer stream.Close(ctx)
		for stream.Next(ctx) {
			var ev struct {
				OperationType string `bson:"operationType"`
				NS            struct {
					Coll string `bson:"coll"`
				} `bson:"ns"`
			}
			if err := stream.Decode(&ev); err != nil {
				log.Errorf("change stream decode: %v", err)
				continue
			}
			broadcast(ChangeEvent{Collection: ev.NS.Coll, Operation: ev.OperationType})
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Errorf("change stream closed: %v", err)
		}
	}()
	return nil
}

// Events is the SSE endpoint. Each event names the collection that changed.
func Events(c *gin.Context) {
	ch := subscribe()
	defer unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
