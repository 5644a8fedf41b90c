package worldstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/ffhgterh111-hub/LFGWarframeMain/kit"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

// ErrBadRequest marks a request the caller must fix.
var ErrBadRequest = errors.New("worldstate: bad request")

type currentRequest struct {
	Category string `json:"category"`
}

type tierRequest struct {
	Tier string `json:"tier"`
}

// TierResponse is the answer to a per-tier arbitration lookup.
type TierResponse struct {
	Tier   mission.ArbitrationTier `json:"tier"`
	Found  bool                    `json:"found"`
	Window *mission.Window         `json:"window,omitempty"`
}

// endpoints are the transport-neutral operations served over HTTP and MCP.
type endpoints struct {
	current kit.Endpoint
	status  kit.Endpoint
	refresh kit.Endpoint
	tier    kit.Endpoint
	consume kit.Endpoint
}

func (s *Service) endpoints() endpoints {
	mw := func(name string) kit.Middleware { return kit.Logging(s.logger, name) }
	return endpoints{
		current: mw("current")(s.currentEndpoint),
		status:  mw("status")(s.statusEndpoint),
		refresh: mw("refresh")(s.refreshEndpoint),
		tier:    mw("tier")(s.tierEndpoint),
		consume: mw("consume")(s.consumeEndpoint),
	}
}

func (s *Service) currentEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*currentRequest)
	cat, err := mission.ParseCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s.GetCurrent(cat), nil
}

func (s *Service) statusEndpoint(_ context.Context, _ any) (any, error) {
	return s.Status(), nil
}

func (s *Service) refreshEndpoint(ctx context.Context, _ any) (any, error) {
	if err := s.ForceRefresh(ctx); err != nil {
		return nil, err
	}
	return s.Status(), nil
}

func (s *Service) tierEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*tierRequest)
	tier, ok := mission.ParseArbitrationTier(r.Tier)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tier %q", ErrBadRequest, r.Tier)
	}
	w, found, err := s.EarliestArbitration(ctx, tier)
	if err != nil {
		return nil, err
	}
	resp := TierResponse{Tier: tier, Found: found}
	if found {
		resp.Window = &w
	}
	return resp, nil
}

func (s *Service) consumeEndpoint(_ context.Context, _ any) (any, error) {
	return s.ConsumeChanges(), nil
}
