package network

import (
	"fmt"
	"io"
	"net/http"
)

// Http is the outbound HTTP boundary. Keeping it as an interface lets tests
// stub the router's REST API.
type Http interface {
	Get(req *http.Request) ([]byte, error)
}

type DefaultHttp struct {
	client *http.Client
}

func NewHttp() Http {
	return &DefaultHttp{
		client: &http.Client{},
	}
}

func (d *DefaultHttp) Get(req *http.Request) ([]byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d", req.URL.Host,
			resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
