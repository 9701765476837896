package bot

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/centavo/ingest-bot/internal/config"
	"gitlab.com/centavo/ingest-bot/internal/gemini"
	"gitlab.com/centavo/ingest-bot/internal/models"
	"gitlab.com/centavo/ingest-bot/internal/repository"
)

// The fakes below back handler tests with in-memory state so the pipeline
// can be exercised without Postgres. They mirror the repository contracts,
// sentinel errors included.

type fakeAccounts struct {
	accounts map[uuid.UUID]*models.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[uuid.UUID]*models.Account)}
}

func (f *fakeAccounts) add(account *models.Account) {
	f.accounts[account.ID] = account
}

func (f *fakeAccounts) GetByTelegramID(_ context.Context, chatID int64) (*models.Account, error) {
	for _, account := range f.accounts {
		if account.TelegramChatID != nil && *account.TelegramChatID == chatID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotLinked
}

func (f *fakeAccounts) LinkTelegram(_ context.Context, accountID uuid.UUID, chatID int64) (bool, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return false, repository.ErrAccountNotFound
	}
	rebound := false
	for _, other := range f.accounts {
		if other.ID != accountID && other.TelegramChatID != nil && *other.TelegramChatID == chatID {
			other.TelegramChatID = nil
			rebound = true
		}
	}
	account.TelegramChatID = &chatID
	return rebound, nil
}

func (f *fakeAccounts) ListLinked(_ context.Context) ([]models.Account, error) {
	var linked []models.Account
	for _, account := range f.accounts {
		if account.TelegramChatID != nil {
			linked = append(linked, *account)
		}
	}
	sort.Slice(linked, func(i, j int) bool { return linked[i].Email < linked[j].Email })
	return linked, nil
}

type fakeCategories struct {
	categories []models.Category
}

func (f *fakeCategories) ListActive(_ context.Context, accountID uuid.UUID) ([]models.Category, error) {
	var active []models.Category
	for _, cat := range f.categories {
		if cat.AccountID == accountID && cat.Active {
			active = append(active, cat)
		}
	}
	return active, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			copied := f.categories[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type fakeReceipts struct {
	receipts map[int64]*models.Receipt
	nextID   int64

	createErr error
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{receipts: make(map[int64]*models.Receipt), nextID: 1}
}

func (f *fakeReceipts) Create(_ context.Context, receipt *models.Receipt) error {
	if f.createErr != nil {
		return f.createErr
	}
	receipt.ID = f.nextID
	f.nextID++
	if receipt.Status == "" {
		receipt.Status = models.ReceiptStatusPending
	}
	receipt.CreatedAt = time.Now()
	receipt.UpdatedAt = receipt.CreatedAt
	copied := *receipt
	f.receipts[receipt.ID] = &copied
	return nil
}

func (f *fakeReceipts) GetByID(_ context.Context, id int64) (*models.Receipt, error) {
	receipt, ok := f.receipts[id]
	if !ok {
		return nil, repository.ErrReceiptNotFound
	}
	copied := *receipt
	return &copied, nil
}

func (f *fakeReceipts) Approve(_ context.Context, id int64) (bool, error) {
	receipt, ok := f.receipts[id]
	if !ok || receipt.Status != models.ReceiptStatusPending {
		return false, nil
	}
	receipt.Status = models.ReceiptStatusApproved
	receipt.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeReceipts) Delete(_ context.Context, id int64) error {
	delete(f.receipts, id)
	return nil
}

type fakeTransactions struct {
	created []models.Transaction
	totals  []repository.CategoryTotal

	createErr error
}

func (f *fakeTransactions) Create(_ context.Context, tx *models.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	tx.ID = int64(len(f.created) + 1)
	tx.CreatedAt = time.Now()
	f.created = append(f.created, *tx)
	return nil
}

func (f *fakeTransactions) SumExpensesByCategory(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]repository.CategoryTotal, error) {
	return f.totals, nil
}

type fakeExtractor struct {
	candidate *gemini.Candidate
	err       error

	lastText     string
	lastImageURL string
}

func (f *fakeExtractor) ParseText(_ context.Context, text string, _ []models.Category, _ time.Time) (*gemini.Candidate, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.candidate, nil
}

func (f *fakeExtractor) ParseImage(_ context.Context, imageURL, _ string, _ []models.Category, _ time.Time) (*gemini.Candidate, error) {
	f.lastImageURL = imageURL
	if f.err != nil {
		return nil, f.err
	}
	return f.candidate, nil
}

// fakeObjectStore records uploads and hands back deterministic URLs.
type fakeObjectStore struct {
	uploads map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	f.uploads[objectName] = data
	return fmt.Sprintf("https://storage.example.com/%s", objectName), nil
}

// testBot bundles a Bot wired to fakes with the fakes themselves so tests
// can seed and inspect state.
type testBot struct {
	bot          *Bot
	accounts     *fakeAccounts
	categories   *fakeCategories
	receipts     *fakeReceipts
	transactions *fakeTransactions
	extractor    *fakeExtractor
	images       *fakeObjectStore
}

func newTestBot() *testBot {
	accounts := newFakeAccounts()
	categories := &fakeCategories{}
	receipts := newFakeReceipts()
	transactions := &fakeTransactions{}
	extractor := &fakeExtractor{}
	images := newFakeObjectStore()

	return &testBot{
		bot: &Bot{
			cfg: &config.Config{
				TelegramBotToken: "test-token",
				DatabaseURL:      "test-url",
				AllowRebind:      true,
				SummaryHour:      21,
				SummaryTimezone:  "UTC",
			},
			accounts:     accounts,
			categories:   categories,
			receipts:     receipts,
			transactions: transactions,
			extractor:    extractor,
			images:       images,
			httpClient:   &http.Client{Timeout: downloadTimeout},
		},
		accounts:     accounts,
		categories:   categories,
		receipts:     receipts,
		transactions: transactions,
		extractor:    extractor,
		images:       images,
	}
}

// seedLinkedAccount creates an account bound to chatID with two active
// categories, Dining (expense) and Salary (income).
func (tb *testBot) seedLinkedAccount(chatID int64) *models.Account {
	account := &models.Account{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("user%d@example.com", chatID),
		DisplayName:    "Test User",
		TelegramChatID: &chatID,
	}
	tb.accounts.add(account)
	tb.categories.categories = append(tb.categories.categories,
		models.Category{
			ID:        int64(len(tb.categories.categories) + 1),
			AccountID: account.ID,
			Name:      "Dining",
			Type:      models.CategoryTypeExpense,
			Nature:    models.CategoryNatureDynamic,
			Active:    true,
		},
		models.Category{
			ID:        int64(len(tb.categories.categories) + 2),
			AccountID: account.ID,
			Name:      "Salary",
			Type:      models.CategoryTypeIncome,
			Nature:    models.CategoryNatureFixed,
			Active:    true,
		},
	)
	return account
}

// mustParseDecimal parses a decimal string or panics (for test data).
func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal in test: " + s)
	}
	return d
}
