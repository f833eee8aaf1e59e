package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nimasrn/freight-bids/internal/export"
	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/prom"
)

type InvitationTransitioner interface {
	Transition(ctx context.Context, id int64, event model.InvitationEvent) (*model.Invitation, error)
}

type RouteAuthorizer interface {
	Authorize(ctx context.Context, bidID int64, token string) (*model.Invitation, []*model.Route, error)
}

type ExportConfig struct {
	Bucket     string
	PresignTTL time.Duration
}

type ExportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ResponseService struct {
	tx          Transactor
	bids        BidRepository
	routes      RouteRepository
	carriers    CarrierRepository
	responses   ResponseRepository
	invitations InvitationTransitioner
	gate        RouteAuthorizer
	store       ObjectStore
	exportCfg   ExportConfig
	now         func() time.Time
}

func NewResponseService(tx Transactor, bids BidRepository, routes RouteRepository, carriers CarrierRepository,
	responses ResponseRepository, invitations InvitationTransitioner, gate RouteAuthorizer) *ResponseService {
	return &ResponseService{
		tx:          tx,
		bids:        bids,
		routes:      routes,
		carriers:    carriers,
		responses:   responses,
		invitations: invitations,
		gate:        gate,
		now:         time.Now,
	}
}

// WithObjectStore enables PublishExport.
func (s *ResponseService) WithObjectStore(store ObjectStore, cfg ExportConfig) *ResponseService {
	s.store = store
	s.exportCfg = cfg
	return s
}

// Submit records a carrier's draft or submission arriving through the link.
// The carrier and invitation are taken from the token, never from the body.
func (s *ResponseService) Submit(ctx context.Context, token string, sub model.ResponseSubmission) (*model.CarrierResponse, error) {
	inv, _, err := s.gate.Authorize(ctx, sub.BidID, token)
	if err != nil {
		return nil, err
	}
	sub.CarrierID = inv.CarrierID
	sub.InvitationID = inv.ID
	return s.Record(ctx, sub)
}

// Record appends a new response version. A submission (not a draft) also
// marks the invitation responded; if that fails the saved response stands.
func (s *ResponseService) Record(ctx context.Context, sub model.ResponseSubmission) (*model.CarrierResponse, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(sub.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency %q is not a 3 letter code", model.ErrValidation, sub.Currency)
	}

	routes, err := s.routes.ListForBid(ctx, sub.BidID)
	if err != nil {
		return nil, fmt.Errorf("list bid routes: %w", err)
	}
	known := make(map[int64]struct{}, len(routes))
	for _, r := range routes {
		known[r.ID] = struct{}{}
	}

	routeIDs := make([]int64, 0, len(sub.Rates))
	for id := range sub.Rates {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("route %d: %w", id, ErrUnknownRoute)
		}
		routeIDs = append(routeIDs, id)
	}
	sort.Slice(routeIDs, func(i, j int) bool { return routeIDs[i] < routeIDs[j] })

	now := s.now().UTC()
	resp := &model.CarrierResponse{
		BidID:          sub.BidID,
		CarrierID:      sub.CarrierID,
		InvitationID:   sub.InvitationID,
		ResponderName:  strings.TrimSpace(sub.ResponderName),
		ResponderEmail: strings.TrimSpace(sub.ResponderEmail),
		SubmittedAt:    &now,
		RouteCount:     sub.PricedRoutes(),
		IsDraft:        sub.IsDraft,
		Rates:          make([]model.RateEntry, 0, len(routeIDs)),
	}
	for _, id := range routeIDs {
		in := sub.Rates[id]
		resp.Rates = append(resp.Rates, model.RateEntry{
			RouteID:  id,
			Rate:     in.Rate,
			Currency: currency,
			Comment:  in.Comment,
		})
	}

	var saved *model.CarrierResponse
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		version, err := s.responses.MaxVersion(ctx, sub.BidID, sub.CarrierID)
		if err != nil {
			return fmt.Errorf("read response version: %w", err)
		}
		resp.Version = version + 1
		saved, err = s.responses.Create(ctx, resp)
		if err != nil {
			return fmt.Errorf("save response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := "submission"
	if sub.IsDraft {
		kind = "draft"
	}
	prom.IncResponseRecorded(kind)
	logger.Info("carrier response recorded",
		"bid_id", saved.BidID,
		"carrier_id", saved.CarrierID,
		"version", saved.Version,
		"kind", kind)

	if !sub.IsDraft {
		if _, err := s.invitations.Transition(ctx, sub.InvitationID, model.EventResponded); err != nil {
			logger.Error("mark invitation responded failed",
				"invitation_id", sub.InvitationID,
				"response_id", saved.ID,
				"error", err)
		}
	}
	return saved, nil
}

// ListLatest returns the current response of every carrier on the bid.
func (s *ResponseService) ListLatest(ctx context.Context, organizationID, bidID int64) ([]*model.CarrierResponse, error) {
	if _, err := ownedBid(ctx, s.bids, organizationID, bidID); err != nil {
		return nil, err
	}
	all, err := s.responses.ListByBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return model.LatestResponses(all), nil
}

// ExportCSV renders one line per rate of every carrier's current response.
func (s *ResponseService) ExportCSV(ctx context.Context, organizationID, bidID int64) (string, error) {
	latest, err := s.ListLatest(ctx, organizationID, bidID)
	if err != nil {
		return "", err
	}

	carrierIDs := make([]int64, 0, len(latest))
	for _, r := range latest {
		carrierIDs = append(carrierIDs, r.CarrierID)
	}
	carriers, err := s.carriers.ListByIDs(ctx, organizationID, carrierIDs)
	if err != nil {
		return "", fmt.Errorf("load carriers: %w", err)
	}
	names := make(map[int64]string, len(carriers))
	for _, c := range carriers {
		names[c.ID] = c.Name
	}

	lanes, err := s.lanes(ctx, bidID, latest)
	if err != nil {
		return "", err
	}

	var rows []export.Row
	for _, resp := range latest {
		for _, rate := range resp.Rates {
			lane := lanes[rate.RouteID]
			if lane == nil {
				lane = &model.Route{ID: rate.RouteID}
			}
			rows = append(rows, export.Row{
				{Name: "carrier_id", Value: resp.CarrierID},
				{Name: "carrier_name", Value: names[resp.CarrierID]},
				{Name: "responder_name", Value: resp.ResponderName},
				{Name: "responder_email", Value: resp.ResponderEmail},
				{Name: "submitted_at", Value: resp.SubmittedAt},
				{Name: "version", Value: resp.Version},
				{Name: "is_draft", Value: resp.IsDraft},
				{Name: "route_id", Value: rate.RouteID},
				{Name: "origin_city", Value: lane.OriginCity},
				{Name: "destination_city", Value: lane.DestinationCity},
				{Name: "equipment_type", Value: string(lane.Equipment)},
				{Name: "rate", Value: rate.Rate},
				{Name: "currency", Value: rate.Currency},
				{Name: "comment", Value: rate.Comment},
			})
		}
	}
	return export.CSV(rows), nil
}

// lanes resolves every route a response points at, including routes deleted
// after the response was saved.
func (s *ResponseService) lanes(ctx context.Context, bidID int64, responses []*model.CarrierResponse) (map[int64]*model.Route, error) {
	routes, err := s.routes.ListForBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("list bid routes: %w", err)
	}
	out := make(map[int64]*model.Route, len(routes))
	for _, r := range routes {
		out[r.ID] = r
	}
	for _, resp := range responses {
		for _, rate := range resp.Rates {
			if _, ok := out[rate.RouteID]; ok {
				continue
			}
			if r, err := s.routes.Get(ctx, rate.RouteID); err == nil {
				out[r.ID] = r
			} else {
				out[rate.RouteID] = nil
			}
		}
	}
	return out, nil
}

// PublishExport uploads the CSV export and returns a time-limited download
// link.
func (s *ResponseService) PublishExport(ctx context.Context, organizationID, bidID int64) (*ExportLink, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}
	csv, err := s.ExportCSV(ctx, organizationID, bidID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("bids/%d/responses-%s.csv", bidID, now.Format("20060102T150405Z"))
	if err := s.store.PutObject(ctx, s.exportCfg.Bucket, key, "text/csv; charset=utf-8", []byte(csv)); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, s.exportCfg.Bucket, key, s.exportCfg.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	logger.Info("bid export published", "bid_id", bidID, "key", key)
	return &ExportLink{Key: key, URL: url, ExpiresAt: now.Add(s.exportCfg.PresignTTL)}, nil
}
