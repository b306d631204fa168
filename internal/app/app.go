package app

import (
	"log/slog"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/pkg/cache"
	"github.com/ConstantineIIII/WhatsappClone/pkg/storage"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
	"github.com/ConstantineIIII/WhatsappClone/pkg/token"
)

// App holds the business logic for auth, chats, messages, users, and
// the admin surface. Handlers stay thin; rules live here.
type App struct {
	Store   store.Store
	Tokens  *token.Issuer
	Cache   cache.MessageCache
	Objects storage.ObjectStore
	Log     *slog.Logger

	now func() time.Time
}

// New wires an App. Objects may be nil when no object store is
// configured; profile-picture uploads then return an error.
func New(st store.Store, tokens *token.Issuer, msgCache cache.MessageCache, objects storage.ObjectStore, log *slog.Logger) *App {
	if msgCache == nil {
		msgCache = cache.NoopCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &App{
		Store:   st,
		Tokens:  tokens,
		Cache:   msgCache,
		Objects: objects,
		Log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}
