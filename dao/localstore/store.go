package localstore

import (
	"context"
	"encoding/json"
	"eum/dao/redis"
	eum "eum/errors"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Keys the web client has always persisted in the browser's localStorage.
const (
	KeyAuthStorage           = "auth-storage"
	KeyAuthToken             = "auth_token"
	KeyBookmarkedIDs         = "bookmarkedIds"
	KeyProBoardSearch        = "proBoardSearch"
	KeyProGroupSearch        = "proGroupSearch"
	KeyNeedRefreshCategories = "needRefreshCategories"
	KeySeason                = "season"
)

// Store is a per-session string key/value store. Get returns eum.ErrNoSuchKey
// for missing keys.
type Store interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Remove(ctx context.Context, namespace, key string) error
	Close() error
}

var store Store

func InitLocalStore() {
	var err error
	switch driver := viper.GetString("localstore.driver"); driver {
	case "redis":
		redis.InitRedis()
		store = redis.NewLocalStorage(redis.GetRDB())
	case "sqlite", "":
		store, err = OpenSQLite(viper.GetString("localstore.sqlite_path"))
	default:
		err = errors.Errorf("unknown localstore driver %q", driver)
	}
	if err != nil {
		panic(err.Error())
	}
}

func GetStore() Store {
	return store
}

// Namespaced binds a Store to one session.
type Namespaced struct {
	store     Store
	namespace string
}

func Bind(s Store, namespace string) *Namespaced {
	return &Namespaced{store: s, namespace: namespace}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.store.Get(ctx, n.namespace, key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.namespace, key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.store.Remove(ctx, n.namespace, key)
}

// GetJSON decodes the blob under key into v. found is false when the key is absent.
func (n *Namespaced) GetJSON(ctx context.Context, key string, v any) (found bool, err error) {
	raw, err := n.Get(ctx, key)
	if errors.Is(err, eum.ErrNoSuchKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, errors.Wrapf(err, "localstore:GetJSON: %s", key)
	}
	return true, nil
}

func (n *Namespaced) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "localstore:SetJSON: %s", key)
	}
	return n.Set(ctx, key, string(raw))
}
