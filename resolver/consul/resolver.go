package consul

import (
	"context"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
)

// ConsulResolver serves mounted content from the Consul KV store.
//
// Every key below the configured prefix is a file; directories are virtual
// and exist as long as some key lives below them.
// Consul KV has a 512KB limit per value, so this suits configuration trees
// and small fixtures.
type ConsulResolver struct {
	kv     *api.KV
	config *ConsulResolverConfig
}

// ConsulResolverConfig contains configuration options for the Consul resolver
type ConsulResolverConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Namespace for Consul Enterprise (optional)
	Namespace string

	// Prefix for all keys in Consul KV (default: "")
	Prefix string
}

func NewConsulResolver(config *ConsulResolverConfig) (*ConsulResolver, error) {
	if config == nil {
		config = &ConsulResolverConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	config.Prefix = strings.Trim(config.Prefix, "/")

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}
	if config.Namespace != "" {
		clientConfig.Namespace = config.Namespace
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulResolver{
		kv:     client.KV(),
		config: config,
	}, nil
}

// buildKey maps a resolver path to a Consul key below the configured prefix.
func (cr *ConsulResolver) buildKey(path string) string {
	key := strings.TrimPrefix(vpath.RemoveTrailingSeparator(vpath.Resolve("/", path)), "/")
	if cr.config.Prefix == "" {
		return key
	}
	if key == "" {
		return cr.config.Prefix
	}
	return cr.config.Prefix + "/" + key
}

func keyPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

func (cr *ConsulResolver) options(ctx context.Context) *api.QueryOptions {
	return (&api.QueryOptions{}).WithContext(ctx)
}

// Put stores content at path.
func (cr *ConsulResolver) Put(ctx context.Context, path string, content []byte) error {
	_, err := cr.kv.Put(&api.KVPair{
		Key:   cr.buildKey(path),
		Value: content,
	}, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cr *ConsulResolver) List(ctx context.Context, path string) ([]string, error) {
	prefix := keyPrefix(cr.buildKey(path))

	keys, _, err := cr.kv.Keys(prefix, "/", cr.options(ctx))
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 && prefix != "" {
		return nil, data.NewPathError(data.ENOENT, "list", path)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (cr *ConsulResolver) Stat(ctx context.Context, path string) (*resolver.Stat, error) {
	key := cr.buildKey(path)
	if key == "" {
		return resolver.DirStat(), nil
	}

	pair, _, err := cr.kv.Get(key, cr.options(ctx))
	if err != nil {
		return nil, err
	}
	if pair != nil {
		return resolver.FileStat(int64(len(pair.Value))), nil
	}

	keys, _, err := cr.kv.Keys(keyPrefix(key), "/", cr.options(ctx))
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		return resolver.DirStat(), nil
	}

	return nil, data.NewPathError(data.ENOENT, "stat", path)
}

func (cr *ConsulResolver) ReadAll(ctx context.Context, path string) ([]byte, error) {
	pair, _, err := cr.kv.Get(cr.buildKey(path), cr.options(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, data.NewPathError(data.ENOENT, "read", path)
	}
	if pair.Value == nil {
		return []byte{}, nil
	}
	return pair.Value, nil
}
