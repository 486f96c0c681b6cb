package app

import (
	"context"
	"io"
	"time"

	"vdv736/adapters/myredis"
	"vdv736/adapters/sqlite"
	"vdv736/domain"
	"vdv736/interfaces"
	"vdv736/service"
)

// Stores is the persistence handle of one node: both collections and the connection behind them.
type Stores struct {
	Subscriptions interfaces.Store[domain.Subscription]
	Situations    interfaces.Store[domain.Situation]
	io.Closer
}

// OpenSQLite opens the sqlite file at path, creating it when missing.
func OpenSQLite(path string) (*Stores, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Subscriptions: sqlite.NewStore(db, sqlite.SubscriptionsTable, domain.MarshalSubscription, domain.UnmarshalSubscription),
		Situations:    sqlite.NewStore(db, sqlite.SituationsTable, domain.MarshalSituation, domain.UnmarshalSituation),
		Closer:        db,
	}, nil
}

// OpenRedis connects to the redis server at url and checks it answers. Keys are placed under
// namespace so several participants can share one server.
func OpenRedis(ctx context.Context, url, namespace string) (*Stores, error) {
	client, err := myredis.NewRedisUniversalClient(url)
	if err != nil {
		return nil, service.NewBadParameterError("invalid redis url", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, service.NewInternalServerError("can't connect to redis", err)
	}

	prefix := func(collection string) string {
		if namespace == "" {
			return collection
		}
		return namespace + ":" + collection
	}
	return &Stores{
		Subscriptions: myredis.NewStore(client, prefix(myredis.SubscriptionsPrefix), domain.MarshalSubscription, domain.UnmarshalSubscription),
		Situations:    myredis.NewStore(client, prefix(myredis.SituationsPrefix), domain.MarshalSituation, domain.UnmarshalSituation),
		Closer:        client,
	}, nil
}
