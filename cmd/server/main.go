package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/planthead/planthead-backend/internal/config"
	"github.com/planthead/planthead-backend/internal/database"
	"github.com/planthead/planthead-backend/internal/handlers"
	"github.com/planthead/planthead-backend/internal/middleware"
	"github.com/planthead/planthead-backend/internal/routes"
	"github.com/planthead/planthead-backend/internal/services"
	"github.com/planthead/planthead-backend/internal/storage"
	"github.com/planthead/planthead-backend/internal/store"
)

type stores struct {
	plants   store.PlantStore
	posts    store.PostStore
	accounts store.AccountStore
	sessions store.SessionStore
	redis    *redis.Client
	closers  []func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStores(ctx, cfg)
	defer func() {
		for _, c := range st.closers {
			c()
		}
	}()

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob store:", err)
	}

	hub := services.NewFeedHub()
	var feed services.FeedPublisher = hub
	var cache services.Cache = services.NewMemoryCache()
	if st.redis != nil {
		cache = services.NewRedisCache(st.redis)
		redisFeed := services.NewRedisFeed(st.redis, hub)
		redisFeed.Start(ctx)
		feed = redisFeed
	}
	if cfg.TrefleToken == "" {
		log.Println("⚠️  WARNING: TREFLE_TOKEN not set. Species search will fail upstream.")
	}

	accounts := services.NewAccounts(st.accounts, st.sessions)
	uploads := services.NewUploads(blobs)
	plants := services.NewPlants(st.plants, uploads)
	h := handlers.New(handlers.Options{
		Accounts:       accounts,
		Plants:         plants,
		Posts:          services.NewPosts(st.posts, feed, uploads),
		Profiles:       services.NewProfiles(accounts, plants),
		Species:        services.NewSpeciesLookup(cfg.TrefleBaseURL, cfg.TrefleToken, cache),
		Uploads:        uploads,
		Feed:           hub,
		PlantBucket:    cfg.PlantBucket,
		PostBucket:     cfg.PostBucket,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.HideQueryToken)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Otherwise: Redis-based rate limit when Redis is available
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else if st.redis != nil {
		r.Use(middleware.NewRedisRateLimit(st.redis).Handler)
	}

	routes.SetupRoutes(r, h, accounts, routes.Options{SpeciesPerMinute: cfg.SpeciesRatePerMin})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Planthead backend running on :%s (store=%s, blobs=%s)", cfg.Port, cfg.StoreDriver, cfg.BlobDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server:", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config) stores {
	if cfg.IsMemoryStore() {
		log.Println("⚠️  WARNING: STORE_DRIVER=memory. Data is lost on restart.")
		mem := store.NewMemory()
		return stores{plants: mem, posts: mem, accounts: mem, sessions: mem}
	}

	var st stores

	log.Printf("Connecting to PostgreSQL...")
	pg, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	st.closers = append(st.closers, func() { pg.Close() })
	st.accounts = store.NewPostgresAccounts(pg)

	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	st.closers = append(st.closers, func() { rdb.Close() })
	st.redis = rdb
	st.sessions = store.NewRedisSessions(rdb)

	log.Printf("Connecting to MongoDB...")
	log.Printf("MongoDB URI: %s", database.MaskURI(cfg.MongoURI))
	client, db, err := database.Connect(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Println("Troubleshooting tips:")
		log.Println("1. Check if your IP is whitelisted in MongoDB Atlas")
		log.Println("2. Verify your connection string format (mongodb+srv:// for Atlas)")
		log.Println("3. Check if the cluster is running (not paused)")
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	st.closers = append(st.closers, func() { database.Disconnect(client) })

	plants := store.NewMongoPlants(db)
	posts := store.NewMongoPosts(db)
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := plants.EnsureIndexes(idxCtx); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure plant indexes: %v", err)
	}
	if err := posts.EnsureIndexes(idxCtx); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure post indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}
	st.plants = plants
	st.posts = posts
	return st
}

func openBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.BlobDriver {
	case config.BlobMemory:
		log.Println("⚠️  WARNING: BLOB_DRIVER=memory. Uploads are lost on restart.")
		return storage.NewMemory(), nil
	case config.BlobS3:
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
			PublicURL:       cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		log.Println("✅ S3 blob store initialized")
		return s3, nil
	case config.BlobGCS:
		gcs, err := storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSPublicURL)
		if err != nil {
			return nil, err
		}
		log.Println("✅ GCS blob store initialized")
		return gcs, nil
	default:
		if cfg.CloudinaryName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, errors.New("cloudinary credentials not set (CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET)")
		}
		cld, err := storage.NewCloudinary(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, err
		}
		log.Println("✅ Cloudinary service initialized")
		return cld, nil
	}
}
