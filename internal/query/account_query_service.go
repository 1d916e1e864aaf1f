package query

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/abpira/accounts/internal/mapper"
	"github.com/abpira/accounts/internal/repository"
	"github.com/abpira/accounts/shared/cqrs"
	"github.com/abpira/accounts/shared/errs"
	"github.com/abpira/accounts/shared/events"
	"github.com/abpira/accounts/shared/models"
)

// CustomerViewStore is the read model the query side serves from.
type CustomerViewStore interface {
	GetByMobileNumber(ctx context.Context, mobileNumber string) (*models.CustomerView, bool)
	CustomerViewVersion(ctx context.Context, mobileNumber string) (int64, bool)
	CacheCustomerView(ctx context.Context, view *models.CustomerView, version int64) bool
	InvalidateCustomerView(ctx context.Context, mobileNumbers ...string)
}

type AccountQueryService struct {
	store repository.Store
	views CustomerViewStore
}

func NewAccountQueryService(store repository.Store, views CustomerViewStore) *AccountQueryService {
	return &AccountQueryService{store: store, views: views}
}

// FetchAccount returns the combined customer and account view for a mobile
// number. Cached views are served directly. Misses are loaded from the store
// and cached, unless the entry was invalidated while loading.
func (s *AccountQueryService) FetchAccount(ctx context.Context, q cqrs.FetchAccountQuery) (*models.CustomerView, error) {
	if view, ok := s.views.GetByMobileNumber(ctx, q.MobileNumber); ok {
		return view, nil
	}
	version, cacheable := s.views.CustomerViewVersion(ctx, q.MobileNumber)

	customer, err := s.store.FindCustomerByMobileNumber(ctx, q.MobileNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NewNotFound("Customer", "mobileNumber", q.MobileNumber)
	}
	if err != nil {
		return nil, err
	}

	account, err := s.store.FindAccountByCustomerID(ctx, customer.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NewNotFound("Accounts", "CustomerId", customer.CustomerID)
	}
	if err != nil {
		return nil, err
	}

	view := mapper.ToCustomerView(customer, &models.CustomerView{})
	view.Account = mapper.ToAccountView(account, &models.AccountView{})
	if cacheable {
		s.views.CacheCustomerView(ctx, view, version)
	}
	return view, nil
}

// HandleAccountEvent drops read-model entries named by account events. It
// never writes views: events may arrive long after later writes committed,
// and only Fetch repopulates the cache from the store. Unknown event types
// are ignored.
func (s *AccountQueryService) HandleAccountEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.AccountCreated:
		var data events.AccountCreatedEvent
		if err := event.DecodeData(&data); err != nil {
			return fmt.Errorf("failed to decode %s: %w", event.Type, err)
		}
		s.views.InvalidateCustomerView(ctx, data.Customer.MobileNumber)

	case events.AccountUpdated:
		var data events.AccountUpdatedEvent
		if err := event.DecodeData(&data); err != nil {
			return fmt.Errorf("failed to decode %s: %w", event.Type, err)
		}
		s.views.InvalidateCustomerView(ctx, data.PreviousMobileNumber, data.Customer.MobileNumber)

	case events.AccountDeleted:
		var data events.AccountDeletedEvent
		if err := event.DecodeData(&data); err != nil {
			return fmt.Errorf("failed to decode %s: %w", event.Type, err)
		}
		s.views.InvalidateCustomerView(ctx, data.MobileNumber)

	default:
		log.Printf("Ignoring unknown event type %q", event.Type)
	}
	return nil
}
