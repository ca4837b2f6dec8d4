package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sportcat_dev_v1_202608/internal/controller"
	"sportcat_dev_v1_202608/internal/model"
	"sportcat_dev_v1_202608/internal/repository"
	"sportcat_dev_v1_202608/internal/router"
	"sportcat_dev_v1_202608/internal/service"
	"sportcat_dev_v1_202608/internal/task"
)

func main() {
	// .env 不存在就直接用环境变量
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "sportcat",
		Usage: "体育用品目录迁移工具: CSV 转目录 / 文案修复 / 图片抠图 / 查询服务",
		Commands: []*cli.Command{
			convertCommand(),
			repairCommand(),
			rembgCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("执行失败: %v", err)
	}
}

// ==================== 基础设施 ====================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupLogging 日志同时写文件和标准输出
func setupLogging(logFile string) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("警告: 打开日志文件失败 (%s): %v，仅输出到控制台", logFile, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
}

// initGenLogRepo 初始化调用日志库(sqlite)
// 日志库打不开不影响主流程，降级为不落库
func initGenLogRepo() repository.GenCallLogRepository {
	dbPath := getEnv("GENLOG_DB", "gen_calls.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("警告: 调用日志库打开失败 (%s): %v", dbPath, err)
		return nil
	}
	if err := db.AutoMigrate(&model.GenCallLog{}); err != nil {
		log.Printf("警告: 调用日志表迁移失败: %v", err)
		return nil
	}
	return repository.NewGenCallLogRepository(db)
}

func newOllamaService() *service.OllamaService {
	return service.NewOllamaService(&service.OllamaConfig{
		BaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		Model:   getEnv("OLLAMA_MODEL", "llama3.1:8b"),
	}, initGenLogRepo())
}

// ==================== convert ====================

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "读取源表 CSV，逐行生成文案并写出目录 JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "csv", Value: getEnv("CSV_FILE", "product_data.csv"), Usage: "源表文件"},
			&cli.StringFlag{Name: "out", Value: getEnv("CATALOG_FILE", "products.json"), Usage: "目录输出文件"},
		},
		Action: func(c *cli.Context) error {
			setupLogging("product_processing.log")
			log.Println("开始 CSV 转目录...")

			converter := service.NewConverterService(
				&service.ConverterConfig{CSVFile: c.String("csv")},
				newOllamaService(),
				repository.NewCatalogRepository(c.String("out")),
			)

			if err := converter.Run(context.Background()); err != nil {
				return err
			}

			fmt.Println("CSV 已成功转换为目录 JSON")
			return nil
		},
	}
}

// ==================== repair ====================

func repairCommand() *cli.Command {
	return &cli.Command{
		Name:  "repair",
		Usage: "扫描目录中仍是兜底文案的记录并重新生成",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Value: getEnv("CATALOG_FILE", "products.json"), Usage: "目录文件"},
			&cli.StringFlag{Name: "failed", Value: getEnv("FAILED_FILE", "failed_description_updates.json"), Usage: "失败清单输出文件"},
		},
		Action: func(c *cli.Context) error {
			setupLogging("description_update.log")

			repairSvc := service.NewRepairService(
				&service.RepairConfig{FailedFile: c.String("failed")},
				newOllamaService(),
				repository.NewCatalogRepository(c.String("catalog")),
			)

			result, err := repairSvc.Run(context.Background())
			if err != nil {
				return err
			}

			log.Printf("修复流程结束: 扫描 %d, 标记 %d, 更新 %d, 仍失败 %d",
				result.Scanned, result.Flagged, result.Updated, len(result.Failed))
			return nil
		},
	}
}

// ==================== rembg ====================

func rembgCommand() *cli.Command {
	return &cli.Command{
		Name:  "rembg",
		Usage: "批量去除商品图片背景，输出透明 PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Value: "images", Usage: "输入图片目录"},
			&cli.StringFlag{Name: "out", Value: "no_background_images", Usage: "输出目录"},
		},
		Action: func(c *cli.Context) error {
			setupLogging("product_processing.log")

			imageSvc := service.NewImageService(&service.ImageConfig{
				InputDir:  c.String("in"),
				OutputDir: c.String("out"),
			})
			return imageSvc.Run()
		},
	}
}

// ==================== serve ====================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动目录查询/维护 HTTP 服务",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Value: getEnv("CATALOG_FILE", "products.json"), Usage: "目录文件"},
			&cli.StringFlag{Name: "port", Value: getEnv("SERVER_PORT", "8080"), Usage: "监听端口"},
		},
		Action: func(c *cli.Context) error {
			setupLogging("product_processing.log")

			catalogRepo := repository.NewCatalogRepository(c.String("catalog"))
			ollamaSvc := newOllamaService()
			repairSvc := service.NewRepairService(
				&service.RepairConfig{FailedFile: getEnv("FAILED_FILE", "failed_description_updates.json")},
				ollamaSvc,
				catalogRepo,
			)

			// 配置了 REPAIR_CRON 才开定时修复
			if spec := os.Getenv("REPAIR_CRON"); spec != "" {
				repairTask := task.NewRepairTask(repairSvc, spec)
				repairTask.Start()
				defer repairTask.Stop()
			}

			catalogCtl := controller.NewCatalogController(catalogRepo, repairSvc, ollamaSvc)
			r := router.SetupRouter(catalogCtl)

			srv := &http.Server{
				Addr:    ":" + c.String("port"),
				Handler: r,
			}

			go func() {
				log.Printf("服务已启动: http://localhost:%s", c.String("port"))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("服务启动失败: %v", err)
				}
			}()

			// 等待退出信号
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Println("收到退出信号，正在关闭...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("关闭服务失败: %w", err)
			}

			log.Println("服务已退出")
			return nil
		},
	}
}
