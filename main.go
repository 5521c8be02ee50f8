package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"backend/config"
	"backend/controllers"
	"backend/ledger"
	"backend/middleware"
	"backend/routes"
	"backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	logg := config.GetLogger()

	gin.SetMode(gin.ReleaseMode)

	r := gin.Default()

	middleware.InitMetrics()
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	origins := []string{"http://localhost:5173"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	config.ConnectDatabase()

	engine := ledger.New(ledger.NewMongoStore(), logg)
	controllers.Init(engine)

	if err := controllers.StartChangeStream(context.Background(), logg); err != nil {
		logg.WithError(err).Warn("change stream unavailable, SSE events disabled")
	}

	s := gocron.NewScheduler(time.UTC)
	s.Every(1).Day().At("07:00").Do(utils.CheckLowStock)
	s.StartAsync()

	routes.InitializeRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logg.Infof("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logg.WithError(err).Fatal("server stopped")
	}
}
