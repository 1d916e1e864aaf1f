package command

import (
	"context"
	"errors"
	"testing"

	"github.com/abpira/accounts/internal/repository"
	"github.com/abpira/accounts/internal/repository/repositorytest"
	"github.com/abpira/accounts/shared/cqrs"
	"github.com/abpira/accounts/shared/errs"
	"github.com/abpira/accounts/shared/events"
	"github.com/abpira/accounts/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeViews struct {
	invalidated []string
}

func (f *fakeViews) InvalidateCustomerView(ctx context.Context, mobileNumbers ...string) {
	f.invalidated = append(f.invalidated, mobileNumbers...)
}

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	f.events = append(f.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return f.err
}

func newTestService(store repository.Store) (*AccountCommandService, *fakeViews, *fakePublisher) {
	views := &fakeViews{}
	pub := &fakePublisher{}
	return NewAccountCommandService(store, views, pub), views, pub
}

func sampleView() models.CustomerView {
	return models.CustomerView{Name: "abcde", Email: "abcde@gmail.com", MobileNumber: "1234567890"}
}

// ---- create ----

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewMemoryStore()
	svc, views, pub := newTestService(store)

	require.NoError(t, svc.CreateAccount(ctx, cqrs.CreateAccountCommand{Customer: sampleView()}))

	customers := store.Customers()
	require.Len(t, customers, 1)
	assert.Equal(t, "abcde", customers[0].Name)
	assert.Equal(t, "abcde@gmail.com", customers[0].Email)
	assert.Equal(t, "1234567890", customers[0].MobileNumber)
	assert.NotZero(t, customers[0].CustomerID)

	accounts := store.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, customers[0].CustomerID, accounts[0].CustomerID)
	assert.Equal(t, models.SavingsAccountType, accounts[0].AccountType)
	assert.Equal(t, models.DefaultBranchAddress, accounts[0].BranchAddress)
	assert.GreaterOrEqual(t, accounts[0].AccountNumber, int64(1_000_000_000))
	assert.Less(t, accounts[0].AccountNumber, int64(1_900_000_000))

	assert.Equal(t, []string{"1234567890"}, views.invalidated)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.AccountEventsStream, pub.events[0].stream)
	assert.Equal(t, events.AccountCreated, pub.events[0].eventType)
	created := pub.events[0].data.(events.AccountCreatedEvent)
	require.NotNil(t, created.Customer.Account)
	assert.Equal(t, accounts[0].AccountNumber, created.Customer.Account.AccountNumber)
}

func TestCreateAccountIgnoresAccountSubView(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	svc, _, _ := newTestService(store)

	view := sampleView()
	view.Account = &models.AccountView{AccountNumber: 1111111111, AccountType: "Current", BranchAddress: "elsewhere"}
	require.NoError(t, svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Customer: view}))

	accounts := store.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, models.SavingsAccountType, accounts[0].AccountType)
	assert.Equal(t, models.DefaultBranchAddress, accounts[0].BranchAddress)
}

func TestCreateAccountDuplicateMobileNumber(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewMemoryStore()
	svc, _, pub := newTestService(store)

	require.NoError(t, svc.CreateAccount(ctx, cqrs.CreateAccountCommand{Customer: sampleView()}))
	writesBefore := store.Writes()

	err := svc.CreateAccount(ctx, cqrs.CreateAccountCommand{Customer: sampleView()})
	var dup *errs.DuplicateCustomerError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1234567890", dup.MobileNumber)
	assert.Contains(t, err.Error(), "1234567890")

	assert.Equal(t, writesBefore, store.Writes(), "duplicate create must not write")
	assert.Len(t, store.Customers(), 1)
	assert.Len(t, store.Accounts(), 1)
	assert.Len(t, pub.events, 1)
}

func TestCreateAccountRegeneratesTakenNumber(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	store.PutAccount(models.Account{AccountNumber: 1_111_111_111, CustomerID: 99})
	svc, _, _ := newTestService(store)

	candidates := []int64{1_111_111_111, 1_222_222_222}
	svc.newAccountNumber = func() int64 {
		n := candidates[0]
		candidates = candidates[1:]
		return n
	}

	require.NoError(t, svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Customer: sampleView()}))

	account, err := store.FindAccountByID(context.Background(), 1_222_222_222)
	require.NoError(t, err)
	assert.NotEqual(t, int64(99), account.CustomerID)
	taken, err := store.FindAccountByID(context.Background(), 1_111_111_111)
	require.NoError(t, err)
	assert.Equal(t, int64(99), taken.CustomerID, "existing account must not be overwritten")
}

func TestCreateAccountGivesUpOnCollisions(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	store.PutAccount(models.Account{AccountNumber: 1_111_111_111, CustomerID: 99})
	svc, _, pub := newTestService(store)
	svc.newAccountNumber = func() int64 { return 1_111_111_111 }

	err := svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Customer: sampleView()})
	assert.ErrorIs(t, err, ErrAccountNumbersExhausted)
	assert.Empty(t, pub.events)
}

func TestCreateAccountPropagatesStoreFailure(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	boom := errors.New("connection refused")
	store.Fail = func(method string) error {
		if method == "SaveAccount" {
			return boom
		}
		return nil
	}
	svc, views, pub := newTestService(store)

	err := svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Customer: sampleView()})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, views.invalidated)
	assert.Empty(t, pub.events)
	// The in-memory store has no rollback, so the customer insert survives.
	assert.Len(t, store.Customers(), 1)
	assert.Empty(t, store.Accounts())
}

func TestCreateAccountPublishFailureIsNotAnError(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	svc, _, pub := newTestService(store)
	pub.err = errors.New("redis down")

	require.NoError(t, svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Customer: sampleView()}))
	assert.Len(t, store.Customers(), 1)
}

// ---- update ----

func createSample(t *testing.T, svc *AccountCommandService, store *repositorytest.MemoryStore) (models.Customer, models.Account) {
	t.Helper()
	require.NoError(t, svc.CreateAccount(context.Background(), cqrs.CreateAccountCommand{Customer: sampleView()}))
	return store.Customers()[0], store.Accounts()[0]
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewMemoryStore()
	svc, views, pub := newTestService(store)
	customer, account := createSample(t, svc, store)
	views.invalidated = nil

	updated, err := svc.UpdateAccount(ctx, cqrs.UpdateAccountCommand{Customer: models.CustomerView{
		Name: "fghij", Email: "fghij@gmail.com", MobileNumber: "0987654321",
		Account: &models.AccountView{AccountNumber: account.AccountNumber, AccountType: "Current", BranchAddress: "1 Side Street"},
	}})
	require.NoError(t, err)
	assert.True(t, updated)

	gotCustomer, err := store.FindCustomerByID(ctx, customer.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, customer.CustomerID, gotCustomer.CustomerID)
	assert.Equal(t, "fghij", gotCustomer.Name)
	assert.Equal(t, "fghij@gmail.com", gotCustomer.Email)
	assert.Equal(t, "0987654321", gotCustomer.MobileNumber)

	gotAccount, err := store.FindAccountByID(ctx, account.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, account.AccountNumber, gotAccount.AccountNumber)
	assert.Equal(t, customer.CustomerID, gotAccount.CustomerID)
	assert.Equal(t, "Current", gotAccount.AccountType)
	assert.Equal(t, "1 Side Street", gotAccount.BranchAddress)

	assert.ElementsMatch(t, []string{"1234567890", "0987654321"}, views.invalidated)
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, events.AccountUpdated, last.eventType)
	assert.Equal(t, "1234567890", last.data.(events.AccountUpdatedEvent).PreviousMobileNumber)
}

func TestUpdateAccountWithoutAccountIsNoop(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	svc, views, pub := newTestService(store)

	updated, err := svc.UpdateAccount(context.Background(), cqrs.UpdateAccountCommand{Customer: sampleView()})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Empty(t, store.Calls())
	assert.Zero(t, store.Writes())
	assert.Empty(t, views.invalidated)
	assert.Empty(t, pub.events)
}

func TestUpdateAccountUnknownAccount(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	svc, _, _ := newTestService(store)

	view := sampleView()
	view.Account = &models.AccountView{AccountNumber: 1_999_999_999, AccountType: "Savings", BranchAddress: "x"}
	updated, err := svc.UpdateAccount(context.Background(), cqrs.UpdateAccountCommand{Customer: view})
	assert.False(t, updated)

	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Accounts", nf.Resource)
	assert.Equal(t, "AccountNumber", nf.Field)
	assert.Equal(t, "1999999999", nf.Value)
	assert.Equal(t, []string{"FindAccountByID"}, store.Calls(), "no customer lookup after a missing account")
}

func TestUpdateAccountMissingCustomer(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	store.PutAccount(models.Account{AccountNumber: 1_234_567_890, CustomerID: 77, AccountType: "Savings", BranchAddress: "x"})
	svc, _, pub := newTestService(store)

	view := sampleView()
	view.Account = &models.AccountView{AccountNumber: 1_234_567_890, AccountType: "Current", BranchAddress: "y"}
	_, err := svc.UpdateAccount(context.Background(), cqrs.UpdateAccountCommand{Customer: view})

	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer", nf.Resource)
	assert.Equal(t, "CustomerID", nf.Field)
	assert.Equal(t, "77", nf.Value)
	assert.Empty(t, pub.events)
	assert.Equal(t, []string{"FindAccountByID", "SaveAccount", "FindCustomerByID"}, store.Calls())
}

// ---- delete ----

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewMemoryStore()
	svc, views, pub := newTestService(store)
	customer, _ := createSample(t, svc, store)
	store.PutAccount(models.Account{AccountNumber: 1_555_555_555, CustomerID: customer.CustomerID})
	store.PutAccount(models.Account{AccountNumber: 1_666_666_666, CustomerID: customer.CustomerID + 100})
	views.invalidated = nil

	deleted, err := svc.DeleteAccount(ctx, cqrs.DeleteAccountCommand{MobileNumber: "1234567890"})
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Empty(t, store.Customers())
	remaining := store.Accounts()
	require.Len(t, remaining, 1, "only accounts of other customers survive")
	assert.Equal(t, int64(1_666_666_666), remaining[0].AccountNumber)

	assert.Equal(t, []string{"1234567890"}, views.invalidated)
	assert.Equal(t, events.AccountDeleted, pub.events[len(pub.events)-1].eventType)

	calls := store.Calls()
	assert.Equal(t, []string{"FindCustomerByMobileNumber", "DeleteAccountsByCustomerID", "DeleteCustomerByID"}, calls[len(calls)-3:])
}

func TestDeleteAccountUnknownCustomer(t *testing.T) {
	store := repositorytest.NewMemoryStore()
	svc, _, _ := newTestService(store)

	deleted, err := svc.DeleteAccount(context.Background(), cqrs.DeleteAccountCommand{MobileNumber: "0000000000"})
	assert.False(t, deleted)

	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer", nf.Resource)
	assert.Equal(t, "mobileNumber", nf.Field)
	assert.Equal(t, "0000000000", nf.Value)
	assert.Zero(t, store.Writes())
}
