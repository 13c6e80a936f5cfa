// @title 멘토-멘티 스터디 플래너 API
// @version 1.0
// @description 멘티의 할 일, 공부 시간, 멘토 피드백을 관리하는 백엔드 서버.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"
	"os"

	"study_planner_backend/internal/app"
	"study_planner_backend/internal/config"
	"study_planner_backend/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configDir   string
		migrate     bool
		migrateOnly bool
	)

	root := &cobra.Command{
		Use:           "planner",
		Short:         "멘토-멘티 스터디 플래너 서버",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return err
			}

			// 마이그레이션 플래그
			cfg.ForceMigrate = migrate || migrateOnly
			cfg.MigrateOnly = migrateOnly

			application := app.NewApp(cfg)
			defer logger.Log.Sync()

			// 마이그레이션만 하고 종료
			if migrateOnly {
				log.Println("데이터베이스 마이그레이션 완료, 종료합니다")
				return nil
			}

			application.Run()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config", "configs", "config.yaml 이 있는 디렉터리")
	root.Flags().BoolVar(&migrate, "migrate", false, "시작 시 데이터베이스 마이그레이션 강제 실행 (release 모드 포함)")
	root.Flags().BoolVar(&migrateOnly, "migrate-only", false, "마이그레이션만 실행하고 종료")

	root.AddCommand(&cobra.Command{
		Use:   "seed-users",
		Short: "데모 계정 mentee1, mentor1 생성 또는 갱신",
		Long:  "비밀번호는 SEED_PASSWORD_MENTEE, SEED_PASSWORD_MENTOR 환경 변수에서 읽는다.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return err
			}
			if err := app.SeedUsers(cfg); err != nil {
				return err
			}
			log.Println("시드 계정 갱신 완료")
			return nil
		},
	})

	return root
}
