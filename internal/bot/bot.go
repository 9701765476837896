// Package bot implements the Telegram webhook ingestion pipeline: it turns
// free text and receipt photos into pending receipts via LLM extraction and
// drives the confirm/discard workflow that materializes ledger transactions.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/centavo/ingest-bot/internal/config"
	"gitlab.com/centavo/ingest-bot/internal/gemini"
	"gitlab.com/centavo/ingest-bot/internal/models"
	"gitlab.com/centavo/ingest-bot/internal/repository"
	"gitlab.com/centavo/ingest-bot/internal/storage"
)

// downloadTimeout bounds fetching a photo from the Telegram file API.
const downloadTimeout = 30 * time.Second

// AccountStore is the identity-resolution surface the pipeline needs.
type AccountStore interface {
	GetByTelegramID(ctx context.Context, chatID int64) (*models.Account, error)
	LinkTelegram(ctx context.Context, accountID uuid.UUID, chatID int64) (rebound bool, err error)
	ListLinked(ctx context.Context) ([]models.Account, error)
}

// CategoryStore lists and resolves the categories extraction grounds on.
type CategoryStore interface {
	ListActive(ctx context.Context, accountID uuid.UUID) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
}

// ReceiptStore persists pending receipts and their status transitions.
type ReceiptStore interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id int64) (*models.Receipt, error)
	Approve(ctx context.Context, id int64) (approved bool, err error)
	Delete(ctx context.Context, id int64) error
}

// TransactionStore creates ledger transactions and serves summary aggregates.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	SumExpensesByCategory(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]repository.CategoryTotal, error)
}

// Extractor converts unstructured text or a stored image URL into a candidate
// transaction. Implemented by the gemini client.
type Extractor interface {
	ParseText(ctx context.Context, text string, categories []models.Category, today time.Time) (*gemini.Candidate, error)
	ParseImage(ctx context.Context, imageURL, mimeType string, categories []models.Category, today time.Time) (*gemini.Candidate, error)
}

// Compile-time checks that the concrete implementations satisfy the
// interfaces the pipeline consumes.
var (
	_ AccountStore     = (*repository.AccountRepository)(nil)
	_ CategoryStore    = (*repository.CategoryRepository)(nil)
	_ ReceiptStore     = (*repository.ReceiptRepository)(nil)
	_ TransactionStore = (*repository.TransactionRepository)(nil)
	_ Extractor        = (*gemini.Client)(nil)
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot  *tgbot.Bot
	cfg  *config.Config
	pool *pgxpool.Pool

	accounts     AccountStore
	categories   CategoryStore
	receipts     ReceiptStore
	transactions TransactionStore
	extractor    Extractor
	images       storage.ObjectStore

	httpClient *http.Client
}

// New creates a new Bot instance wired to the given pool, extractor and
// object store.
func New(cfg *config.Config, pool *pgxpool.Pool, extractor Extractor, images storage.ObjectStore) (*Bot, error) {
	b := &Bot{
		cfg:          cfg,
		pool:         pool,
		accounts:     repository.NewAccountRepository(pool),
		categories:   repository.NewCategoryRepository(pool),
		receipts:     repository.NewReceiptRepository(pool),
		transactions: repository.NewTransactionRepository(pool),
		extractor:    extractor,
		images:       images,
		httpClient:   &http.Client{Timeout: downloadTimeout},
	}

	telegramBot, err := tgbot.New(cfg.TelegramBotToken,
		tgbot.WithDefaultHandler(b.handleUpdate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	return b, nil
}
