package services

import (
	"context"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
)

// Transactor runs fn in one database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrganizationRepository interface {
	Get(ctx context.Context, id int64) (*model.Organization, error)
}

type BidRepository interface {
	Create(ctx context.Context, b *model.Bid) (*model.Bid, error)
	Get(ctx context.Context, id int64) (*model.Bid, error)
	ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]*model.Bid, int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.BidStatus) error
}

type RouteRepository interface {
	Create(ctx context.Context, r *model.Route) (*model.Route, error)
	Get(ctx context.Context, id int64) (*model.Route, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]*model.Route, error)
	ListForBid(ctx context.Context, bidID int64) ([]*model.Route, error)
	Attach(ctx context.Context, bidID, routeID int64) error
	Detach(ctx context.Context, bidID, routeID int64) error
	IsReferenced(ctx context.Context, routeID int64) (bool, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	HardDelete(ctx context.Context, id int64) error
}

type CarrierRepository interface {
	Create(ctx context.Context, c *model.Carrier) (*model.Carrier, error)
	ListByIDs(ctx context.Context, organizationID int64, ids []int64) ([]*model.Carrier, error)
	ListActive(ctx context.Context, organizationID int64) ([]*model.Carrier, error)
}

type InvitationRepository interface {
	CreateBatch(ctx context.Context, invitations []*model.Invitation) ([]*model.Invitation, error)
	GetByID(ctx context.Context, id int64) (*model.Invitation, error)
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	ListByBid(ctx context.Context, bidID int64) ([]*model.Invitation, error)
	ListByBidAndCarriers(ctx context.Context, bidID int64, carrierIDs []int64) ([]*model.Invitation, error)
	UpdateStatus(ctx context.Context, inv *model.Invitation, from model.InvitationStatus) error
}

type ResponseRepository interface {
	MaxVersion(ctx context.Context, bidID, carrierID int64) (int, error)
	Create(ctx context.Context, resp *model.CarrierResponse) (*model.CarrierResponse, error)
	ListByBid(ctx context.Context, bidID int64) ([]*model.CarrierResponse, error)
}

// DeliveryPublisher queues invitation delivery jobs.
type DeliveryPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// ObjectStore is where exported files are published.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
