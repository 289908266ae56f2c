// Package redis connects the redis token driver to a Redis server.
//
// It wraps [github.com/redis/go-redis/v9] with startup retries, a ping
// based health probe and a shutdown hook.
//
// Settings are read from the environment:
//
//	TOKEN_REDIS_URL            - redis:// or rediss:// URL
//	TOKEN_REDIS_PREFIX         - key prefix prepended to "oauth2token:{id}"
//	TOKEN_REDIS_TTL            - record expiry, 0 keeps records (default: 0s)
//	TOKEN_REDIS_POOL_SIZE      - maximum connections (default: 10)
//	TOKEN_REDIS_RETRY_ATTEMPTS - connection attempts (default: 3)
//	TOKEN_REDIS_RETRY_INTERVAL - base retry interval (default: 2s)
//
// Usage:
//
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := tokenstore.NewRedisStore(client, tokenstore.WithRedisPrefix(cfg.Prefix))
package redis
