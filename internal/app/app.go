package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ajaykarthicks/StudyAI/internal/config"
	"github.com/ajaykarthicks/StudyAI/internal/core"
	"github.com/ajaykarthicks/StudyAI/internal/core/cache"
	db "github.com/ajaykarthicks/StudyAI/internal/core/database"
	"github.com/ajaykarthicks/StudyAI/internal/core/extraction"
	"github.com/ajaykarthicks/StudyAI/internal/core/llm"
	"github.com/ajaykarthicks/StudyAI/internal/core/objectstore"
	"github.com/ajaykarthicks/StudyAI/internal/core/ocr"
	"github.com/ajaykarthicks/StudyAI/internal/core/pdf"
	"github.com/ajaykarthicks/StudyAI/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Server       *Server

	closers []func() error
}

// NewApp wires every dependency and returns the ready-to-start application.
// The external clients (Postgres, S3, Gemini) are initialized concurrently;
// the optional ones degrade to nil with a log line instead of failing startup.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var (
		dbClient  core.DbClient
		objClient core.ObjectClient
		chatLLM   *llm.GeminiLLM
		visionLLM *llm.GeminiVision
	)

	g, gCtx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		if cfg.DatabaseURL == "" {
			log.Println("DATABASE_URL not set; upload history disabled")
			return nil
		}
		client, err := db.NewDatabaseClient(gCtx, cfg)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		dbClient = client
		log.Println("Database initialized and ready.")
		return nil
	})

	g.Go(func() error {
		client, err := objectstore.NewS3Client(gCtx, cfg)
		if err != nil {
			log.Printf("object storage unavailable, using in-memory text cache: %v", err)
			return nil
		}
		objClient = client
		return nil
	})

	g.Go(func() error {
		if !cfg.VisionEnabled() {
			log.Println("GEMINI_API_KEY not set; vision strategy and chat disabled")
			return nil
		}
		chat, err := llm.NewGeminiLLM(gCtx, cfg.GeminiAPIKey, cfg.GenModel)
		if err != nil {
			return fmt.Errorf("gemini chat model: %w", err)
		}
		vision, err := llm.NewGeminiVision(gCtx, cfg.GeminiAPIKey, cfg.VisionModel)
		if err != nil {
			_ = chat.Close()
			return fmt.Errorf("gemini vision model: %w", err)
		}
		chatLLM, visionLLM = chat, vision
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	app := &App{DBClient: dbClient, ObjectClient: objClient}
	if dbClient != nil {
		app.closers = append(app.closers, dbClient.Close)
	}
	if chatLLM != nil {
		app.closers = append(app.closers, chatLLM.Close, visionLLM.Close)
	}

	// Assign through a plain interface variable so a disabled vision model
	// stays a nil interface, not a typed nil.
	var visionProvider core.VisionProvider
	if visionLLM != nil {
		visionProvider = visionLLM
	}

	textCache := buildTextCache(objClient, cfg.BucketName)
	orchestrator := buildOrchestrator(cfg, visionProvider, app)

	ingestSvc := services.NewIngestService(textCache, orchestrator)
	docSvc := services.NewDocumentService(dbClient, objClient, cfg.BucketName)

	var chatSvc *services.ChatService
	if chatLLM != nil {
		chatSvc = services.NewChatService(textCache, chatLLM, cfg.ChatRPM, cfg.ChunkSize, cfg.ChunkOverlap, cfg.TopK)
	}

	app.Server = NewServer(cfg, ingestSvc, docSvc, chatSvc)
	return app, nil
}

// buildTextCache layers an in-process LRU over S3 when storage is available
// and falls back to a plain memory store when it is not.
func buildTextCache(objClient core.ObjectClient, bucket string) core.CacheStore {
	if objClient == nil {
		return cache.NewMemoryStore()
	}
	tiered, err := cache.NewTieredStore(cache.NewObjectTextCache(objClient, bucket), 0)
	if err != nil {
		log.Printf("lru cache init failed, using object cache directly: %v", err)
		return cache.NewObjectTextCache(objClient, bucket)
	}
	return tiered
}

// buildOrchestrator assembles the recognition cascade. Missing OCR engines
// are tolerated: the cascade simply has fewer fallbacks.
func buildOrchestrator(cfg *config.Config, vision core.VisionProvider, app *App) *extraction.Orchestrator {
	var ocrFast, ocrHeavy core.Recognizer

	if fast, err := ocr.NewFastEngine(cfg.OCRLanguages); err != nil {
		log.Printf("fast OCR engine unavailable: %v", err)
	} else {
		ocrFast = fast
		app.closers = append(app.closers, fast.Close)
	}

	if heavy, err := ocr.NewAccurateEngine(cfg.OCRLanguages); err != nil {
		log.Printf("accurate OCR engine unavailable: %v", err)
	} else {
		ocrHeavy = heavy
		app.closers = append(app.closers, heavy.Close)
	}

	return extraction.NewOrchestrator(
		pdf.NewOpener(),
		pdf.NewFitzRasterizer(cfg.RenderZoom),
		vision,
		ocrFast,
		ocrHeavy,
		extraction.NewQuotaLimiter(cfg.VisionQuotaCalls, cfg.VisionQuotaPause),
		cfg.ConfidenceThreshold,
	)
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}
