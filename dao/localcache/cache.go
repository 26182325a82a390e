package localcache

import (
	"time"

	"github.com/bluele/gcache"
	"github.com/spf13/viper"
)

var sessionCache gcache.Cache

// InitLocalCache builds the session LRU. Sessions idle longer than
// session.idle_expire are evicted and rebuilt from local storage on next use.
func InitLocalCache() {
	size := viper.GetInt("session.size")
	idle := time.Duration(viper.GetInt64("session.idle_expire")) * time.Second
	sessionCache = NewSessionCache(size, idle, gcache.NewRealClock())
}

func GetSessionCache() gcache.Cache {
	return sessionCache
}

// NewSessionCache expires entries idle after they were last written; callers
// re-Set an entry on access to keep it alive.
func NewSessionCache(size int, idle time.Duration, clock gcache.Clock) gcache.Cache {
	return gcache.New(size).LRU().Expiration(idle).Clock(clock).Build()
}

// NewPageCache builds the listing cache owned by one post store. Entries expire
// ttl after they were written.
func NewPageCache(size int, ttl time.Duration, clock gcache.Clock) gcache.Cache {
	return gcache.New(size).LRU().Expiration(ttl).Clock(clock).Build()
}
