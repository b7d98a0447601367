package provider

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/plaid/plaid-go/v41/plaid"
)

const clientName = "ZenWealth"

// PlaidProvider implements Provider on top of the Plaid API client.
type PlaidProvider struct {
	client  *plaid.APIClient
	timeout time.Duration
}

func NewPlaidClient(clientID, secret, env string) *plaid.APIClient {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		log.Fatalf("Invalid Plaid environment: %s", env)
	}

	return plaid.NewAPIClient(configuration)
}

func NewPlaidProvider(client *plaid.APIClient, timeout time.Duration) *PlaidProvider {
	return &PlaidProvider{client: client, timeout: timeout}
}

func (p *PlaidProvider) CreateLinkToken(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: strconv.FormatInt(userID, 10),
	}
	request := plaid.NewLinkTokenCreateRequest(
		clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
	)
	request.SetUser(user)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := p.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", classify(err)
	}
	return resp.GetLinkToken(), nil
}

func (p *PlaidProvider) ExchangeToken(ctx context.Context, publicToken string) (*LinkedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exchangeReq := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	exchangeResp, _, err := p.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*exchangeReq).Execute()
	if err != nil {
		return nil, classify(err)
	}

	item := &LinkedItem{
		AccessToken: exchangeResp.GetAccessToken(),
		ItemID:      exchangeResp.GetItemId(),
	}

	// Institution details are optional; the link still succeeds without them.
	itemReq := plaid.NewItemGetRequest(item.AccessToken)
	itemResp, _, err := p.client.PlaidApi.ItemGet(ctx).ItemGetRequest(*itemReq).Execute()
	if err != nil {
		log.Printf("ERROR: Failed to fetch item details for item %s: %v", item.ItemID, err)
		return item, nil
	}
	if itemResp.GetItem().InstitutionId.IsSet() {
		item.InstitutionID = *itemResp.GetItem().InstitutionId.Get()
	}
	if name, ok := itemResp.GetItem().AdditionalProperties["institution_name"].(string); ok {
		item.InstitutionName = name
	}
	return item, nil
}

func (p *PlaidProvider) FetchAccountSnapshot(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	request := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := p.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, classify(err)
	}

	snapshot := make([]models.AccountSnapshot, 0, len(resp.GetAccounts()))
	for _, acc := range resp.GetAccounts() {
		entry := models.AccountSnapshot{
			AccountID:    acc.GetAccountId(),
			Name:         acc.GetName(),
			OfficialName: acc.GetOfficialName(),
			Mask:         acc.GetMask(),
			Type:         string(acc.GetType()),
			Subtype:      string(acc.GetSubtype()),
		}
		balances := acc.GetBalances()
		if current, ok := balances.GetCurrentOk(); ok && current != nil {
			v := *current
			entry.CurrentBalance = &v
		}
		if available, ok := balances.GetAvailableOk(); ok && available != nil {
			v := *available
			entry.AvailableBalance = &v
		}
		snapshot = append(snapshot, entry)
	}
	return snapshot, nil
}

func (p *PlaidProvider) FetchTransactionDelta(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	request := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != "" {
		request.SetCursor(cursor)
	}
	resp, _, err := p.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
	if err != nil {
		return nil, classify(err)
	}

	batch := &models.DeltaBatch{
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
	}
	for _, txn := range resp.GetAdded() {
		entry, err := toDeltaEntry(txn)
		if err != nil {
			return nil, err
		}
		batch.Added = append(batch.Added, entry)
	}
	for _, txn := range resp.GetModified() {
		entry, err := toDeltaEntry(txn)
		if err != nil {
			return nil, err
		}
		batch.Modified = append(batch.Modified, entry)
	}
	for _, removed := range resp.GetRemoved() {
		batch.Removed = append(batch.Removed, removed.GetTransactionId())
	}
	return batch, nil
}

func (p *PlaidProvider) RemoveItem(ctx context.Context, accessToken string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	request := plaid.NewItemRemoveRequest(accessToken)
	_, _, err := p.client.PlaidApi.ItemRemove(ctx).ItemRemoveRequest(*request).Execute()
	if err != nil {
		return classify(err)
	}
	return nil
}

func toDeltaEntry(txn plaid.Transaction) (models.DeltaEntry, error) {
	date, err := time.Parse("2006-01-02", txn.GetDate())
	if err != nil {
		return models.DeltaEntry{}, fmt.Errorf("parse date of transaction %s: %w", txn.GetTransactionId(), err)
	}
	category := txn.GetPersonalFinanceCategory()
	entry := models.DeltaEntry{
		TransactionID: txn.GetTransactionId(),
		AccountID:     txn.GetAccountId(),
		Name:          txn.GetName(),
		Amount:        txn.GetAmount(),
		Date:          date,
		Category:      category.GetPrimary(),
	}
	if merchant, ok := txn.GetMerchantNameOk(); ok && merchant != nil {
		v := *merchant
		entry.MerchantName = &v
	}
	if currency, ok := txn.GetIsoCurrencyCodeOk(); ok && currency != nil {
		v := *currency
		entry.Currency = &v
	}
	return entry, nil
}

// classify maps a Plaid error to the provider taxonomy: revoked credentials
// are permanent and require a relink, everything else is transient and will
// be retried on the next eligible sync window.
func classify(err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return err
	}
	switch plaidErr.GetErrorCode() {
	case "ITEM_LOGIN_REQUIRED", "ACCESS_NOT_GRANTED", "ITEM_LOCKED":
		return fmt.Errorf("%w: %s", ErrReauthRequired, plaidErr.GetErrorCode())
	}
	return err
}
