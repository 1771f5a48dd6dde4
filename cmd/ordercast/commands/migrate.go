package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ordercast/internal/feedback"
	"github.com/wonny/ordercast/internal/store"
	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/database"
	"github.com/wonny/ordercast/pkg/logger"
)

// migrateCmd 개발/초기 구축용 스키마 생성
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "저장소 스키마 생성 (개발/초기 구축용)",
	Long: `저장소 테이블을 생성합니다. 이미 있는 테이블은 건드리지 않습니다.

- postgres: retail.* 판매/상품/행사/연관규칙/재고 + 예측 로그 테이블
- sqlite: 점포별 <SQLITE_DIR>/<store>.db 파일과 테이블
- 예측 로그 테이블은 DATABASE_URL 이 있으면 백엔드와 관계없이 생성

Example:
  go run ./cmd/ordercast migrate --backend postgres
  go run ./cmd/ordercast migrate --backend sqlite --stores 46513,46704`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ordercast Migrate ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)
	ctx := commandContext(cmd)

	switch cfg.Store.Backend {
	case config.BackendSQLite:
		if len(cfg.Store.StoreIDs) == 0 {
			return fmt.Errorf("no stores given (use --stores or STORE_IDS)")
		}
		for _, id := range cfg.Store.StoreIDs {
			path := database.SQLitePath(cfg.SQLite.Dir, id)
			db, err := database.OpenSQLite(path,
				database.WithMkdirAll(),
				database.WithBusyTimeout(cfg.SQLite.BusyTimeoutMS),
				database.WithSchema(store.SQLiteSchema),
			)
			if err != nil {
				return fmt.Errorf("store %s: %w", id, err)
			}
			db.Close()
			PrintSuccess(fmt.Sprintf("sqlite %s", path))
		}
	case config.BackendMemory:
		PrintInfo("memory backend has no schema")
	}

	if cfg.Database.URL == "" {
		if cfg.Store.Backend == config.BackendPostgres {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		return nil
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ddl := []string{feedback.PostgresSchema}
	if cfg.Store.Backend == config.BackendPostgres {
		ddl = append([]string{store.PostgresSchema}, ddl...)
	}
	if err := db.EnsureSchema(ctx, ddl...); err != nil {
		return err
	}

	log.WithField("statements", len(ddl)).Info("Postgres schema applied")
	PrintSuccess("postgres schema applied")
	return nil
}
