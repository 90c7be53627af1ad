package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evertsen/kidschores/internal/backup"
	"github.com/evertsen/kidschores/internal/engine"
	"github.com/evertsen/kidschores/internal/handler"
	"github.com/evertsen/kidschores/internal/middleware"
	"github.com/evertsen/kidschores/internal/push"
	"github.com/evertsen/kidschores/internal/rollover"
	"github.com/evertsen/kidschores/internal/store"
	ws "github.com/evertsen/kidschores/internal/websocket"
)

type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	engine    *engine.Engine
	scheduler *rollover.Scheduler
	backups   *backup.Manager

	childH *handler.ChildHandler
	taskH  *handler.TaskHandler
	shopH  *handler.ShopHandler
	adminH *handler.AdminHandler
	pushH  *handler.PushHandler

	logger *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	shopStore := store.NewShopStore(db)
	pushStore := store.NewPushStore(db)

	var pushSvc *push.Service
	var notifier engine.Notifier
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		notifier = push.NewNotifier(pushSvc, pushStore, logger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	eng := engine.New(childStore, taskStore, shopStore,
		ws.NewExecutor(hub), notifier, logger.With("component", "engine"))

	scheduler := rollover.NewScheduler(eng, logger)

	backupMgr := backup.NewManager(backupCfg, backup.Stores{
		Children: childStore,
		Tasks:    taskStore,
		Shop:     shopStore,
	}, logger)

	return &Server{
		db:        db,
		hub:       hub,
		engine:    eng,
		scheduler: scheduler,
		backups:   backupMgr,
		childH:    handler.NewChildHandler(eng, hub),
		taskH:     handler.NewTaskHandler(eng, hub),
		shopH:     handler.NewShopHandler(eng, hub),
		adminH:    handler.NewAdminHandler(eng, hub, scheduler, backupMgr),
		pushH:     pushH,
		logger:    logger,
	}
}

// Engine returns the engine for startup tasks.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Scheduler returns the rollover scheduler.
func (s *Server) Scheduler() *rollover.Scheduler {
	return s.scheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backups
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Children
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.HandleFunc("PATCH /api/children/{id}", s.childH.Rename)
	mux.HandleFunc("DELETE /api/children/{id}", s.childH.Delete)
	mux.HandleFunc("POST /api/children/{id}/points", s.childH.AddPoints)
	mux.HandleFunc("POST /api/points/reset", s.childH.ResetPoints)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/assign", s.taskH.Assign)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.taskH.SetStatus)
	mux.HandleFunc("POST /api/tasks/{id}/approve", s.taskH.Approve)
	mux.HandleFunc("POST /api/tasks/{id}/repeat", s.taskH.SetRepeat)
	mux.HandleFunc("POST /api/tasks/{id}/icon", s.taskH.SetIcon)

	// Shop
	mux.HandleFunc("GET /api/shop/items", s.shopH.ListItems)
	mux.HandleFunc("POST /api/shop/items", s.shopH.CreateItem)
	mux.HandleFunc("GET /api/shop/items/{id}", s.shopH.GetItem)
	mux.HandleFunc("PATCH /api/shop/items/{id}", s.shopH.UpdateItem)
	mux.HandleFunc("DELETE /api/shop/items/{id}", s.shopH.DeleteItem)
	mux.HandleFunc("POST /api/shop/items/{id}/buy", s.shopH.Buy)
	mux.HandleFunc("GET /api/shop/purchases", s.shopH.ListPurchases)
	mux.HandleFunc("DELETE /api/shop/purchases", s.shopH.ClearHistory)

	// Summary and maintenance
	mux.HandleFunc("GET /api/summary", s.adminH.Summary)
	mux.HandleFunc("POST /api/maintenance/purge-orphans", s.adminH.PurgeOrphans)
	mux.HandleFunc("POST /api/maintenance/rollover", s.adminH.RunRollover)

	// Backup
	mux.HandleFunc("POST /api/backup/run", s.adminH.RunBackup)
	mux.HandleFunc("GET /api/backup/status", s.adminH.BackupStatus)
	mux.HandleFunc("POST /api/backup/restore", s.adminH.RestoreBackup)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
