// Package tokenstore persists encrypted OAuth2 token records.
//
// A Backend is either the Cookie backend, which keeps the record on the
// client and needs a live HTTP request/response pair, or the Datastore
// backend, which keys records by user id in a Store. Store drivers:
//
//   - MemoryStore: process-local map, for tests and single-instance setups
//   - RedisStore: JSON strings in Redis (go-redis v9)
//   - PostgresStore: the oauth2_tokens table (pgx v5, goose migrations)
//   - S3Store: JSON objects in an S3-compatible bucket (aws-sdk-go-v2)
//
// Backends never see plaintext. Records are token.Encrypted values produced
// by a pkg/cipher implementation.
//
// Usage:
//
//	store := tokenstore.NewRedisStore(redisClient)
//	backend := tokenstore.NewDatastore(store)
//
//	rec, err := backend.Load(ctx, nil, "user@example.com")
//	if errors.Is(err, tokenstore.ErrNotFound) {
//		// not signed in
//	}
//
// Records are addressed by Key{Namespace: "oauth2token", UserID: id}.
// Each driver renders the key in its own layout but never mixes users.
package tokenstore
