package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evertsen/kidschores/internal/backup"
	"github.com/evertsen/kidschores/internal/database"
	"github.com/evertsen/kidschores/internal/logging"
	"github.com/evertsen/kidschores/internal/push"
	"github.com/evertsen/kidschores/internal/server"
)

func main() {
	port := os.Getenv("KIDSCHORES_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KIDSCHORES_DB_PATH")
	if dbPath == "" {
		dbPath = "kidschores.db"
	}

	logger := logging.Setup(os.Getenv("KIDSCHORES_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	backupCfg := backup.Config{
		Dir:        os.Getenv("KIDSCHORES_BACKUP_DIR"),
		Passphrase: os.Getenv("KIDSCHORES_BACKUP_PASSPHRASE"),
		S3: backup.S3Config{
			Endpoint:  os.Getenv("KIDSCHORES_S3_ENDPOINT"),
			Bucket:    os.Getenv("KIDSCHORES_S3_BUCKET"),
			Region:    os.Getenv("KIDSCHORES_S3_REGION"),
			AccessKey: os.Getenv("KIDSCHORES_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("KIDSCHORES_S3_SECRET_KEY"),
		},
	}

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("KIDSCHORES_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("KIDSCHORES_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, backupCfg, pushCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catch up on any rollover missed while the process was down, then keep
	// firing at midnight.
	srv.Scheduler().RunOnce(time.Now())
	srv.Scheduler().Start(ctx)
	defer srv.Scheduler().Stop()

	if backupCfg.Dir != "" || backupCfg.S3.Bucket != "" {
		srv.BackupManager().Start(ctx)
		defer srv.BackupManager().Stop()
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("KidsChores running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
