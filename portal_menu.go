package hrportal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/MrEthical07/hrportal/menu"
	"go.uber.org/zap"
)

// FetchMenu loads the caller's menu into the directory and returns it. It
// never fails: on error the directory is empty and Menu().Err() holds the
// message.
func (p *Portal) FetchMenu(ctx context.Context) []menu.Node {
	if p == nil || p.menu == nil {
		return []menu.Node{}
	}
	nodes := p.menu.Fetch(ctx)
	if msg := p.menu.Err(); msg != "" {
		p.metricInc(MetricMenuFetchFailure)
		p.logger.Warn("menu fetch failed", zap.String("reason", msg))
		return nodes
	}
	p.metricInc(MetricMenuFetchSuccess)
	return nodes
}

// loadMenu is the directory's source. A payload that is not a JSON array is an
// empty menu.
func (p *Portal) loadMenu(ctx context.Context) ([]menu.Node, error) {
	resp, err := p.Request(ctx, http.MethodGet, p.config.API.MenuPath, nil, nil)
	if err != nil {
		return nil, err
	}
	data := bytes.TrimSpace(resp.Data)
	if len(data) == 0 || data[0] != '[' {
		return []menu.Node{}, nil
	}
	var nodes []menu.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
