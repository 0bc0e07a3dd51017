package quote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/drelay/config"
	"github.com/sisu-network/drelay/network"
	"github.com/sisu-network/drelay/types"
	"github.com/sisu-network/lib/log"
)

const DefaultCacheSize = 256

// Provider retrieves prepared route quotes from the router daemon. Route
// selection itself happens in the router; this is only the boundary.
type Provider interface {
	GetQuote(req *types.QuoteRequest) (*types.Quote, error)
}

type routerProvider struct {
	cfg         config.Drelay
	networkHttp network.Http

	lock  sync.Mutex
	cache *lru.Cache
}

func NewProvider(cfg config.Drelay, networkHttp network.Http) Provider {
	size := cfg.QuoteCacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	return &routerProvider{
		cfg:         cfg,
		networkHttp: networkHttp,
		cache:       lru.New(size),
	}
}

func (p *routerProvider) GetQuote(req *types.QuoteRequest) (*types.Quote, error) {
	if p.cfg.RouterUrl == "" {
		return nil, fmt.Errorf("router url is not configured")
	}

	key := cacheKey(req)

	p.lock.Lock()
	cached, ok := p.cache.Get(key)
	p.lock.Unlock()
	if ok {
		return cached.(*types.Quote), nil
	}

	httpReq, err := http.NewRequest("GET", p.cfg.RouterUrl+"/quote", nil)
	if err != nil {
		return nil, err
	}

	q := httpReq.URL.Query()
	q.Add("from_chain_id", strconv.FormatInt(req.FromChainId, 10))
	q.Add("to_chain_id", strconv.FormatInt(req.ToChainId, 10))
	q.Add("from_token", req.FromToken)
	q.Add("to_token", req.ToToken)
	q.Add("amount", req.Amount)
	q.Add("from_address", req.FromAddress)
	q.Add("to_address", req.ToAddress)
	httpReq.URL.RawQuery = q.Encode()

	data, err := p.networkHttp.Get(httpReq)
	if err != nil {
		return nil, err
	}

	quote := &types.Quote{}
	if err := json.Unmarshal(data, quote); err != nil {
		return nil, fmt.Errorf("cannot parse quote response: %w", err)
	}

	if quote.Route == nil {
		return nil, fmt.Errorf("router returned a quote without a route")
	}

	log.Verbose("Got quote ", quote.Id, " for ", req.Amount, " ", req.FromToken)

	p.lock.Lock()
	p.cache.Add(key, quote)
	p.lock.Unlock()

	return quote, nil
}

// cacheKey covers every field of the request. Requests differing in any
// field, the recipient included, must never share a cache entry.
func cacheKey(req *types.QuoteRequest) lru.Key {
	return fmt.Sprintf("%d:%d:%s:%s:%s:%s:%s", req.FromChainId, req.ToChainId,
		req.FromToken, req.ToToken, req.Amount, req.FromAddress, req.ToAddress)
}
