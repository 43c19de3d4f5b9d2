// Package main library API.
//
// @title           Library Management API
// @version         1.0
// @description     Book catalog, per-warehouse inventory and shelf locations, borrow/return orders.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/qjiujiu/toy-readhub/app/echoServer"
	authctrl "github.com/qjiujiu/toy-readhub/app/echoServer/controller/auth"
	bookctrl "github.com/qjiujiu/toy-readhub/app/echoServer/controller/book"
	orderctrl "github.com/qjiujiu/toy-readhub/app/echoServer/controller/order"
	userctrl "github.com/qjiujiu/toy-readhub/app/echoServer/controller/user"
	"github.com/qjiujiu/toy-readhub/app/echoServer/validation"
	"github.com/qjiujiu/toy-readhub/config"
	bookrepo "github.com/qjiujiu/toy-readhub/repository/book"
	invrepo "github.com/qjiujiu/toy-readhub/repository/inventory"
	locrepo "github.com/qjiujiu/toy-readhub/repository/location"
	orderrepo "github.com/qjiujiu/toy-readhub/repository/order"
	userrepo "github.com/qjiujiu/toy-readhub/repository/user"
	authsvc "github.com/qjiujiu/toy-readhub/service/auth"
	booksvc "github.com/qjiujiu/toy-readhub/service/book"
	ordersvc "github.com/qjiujiu/toy-readhub/service/order"
	usersvc "github.com/qjiujiu/toy-readhub/service/user"
	"github.com/qjiujiu/toy-readhub/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB over the pgx stdlib driver
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	txr := database.NewRunner(db)

	// repos
	br := bookrepo.New(db)
	ir := invrepo.New(db)
	lr := locrepo.New(db)
	or := orderrepo.New(db)
	ur := userrepo.New(db)

	// services
	bs := booksvc.New(txr, br, ir, lr)
	os_ := ordersvc.New(txr, or, ir, br, ur)
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	orderC := &orderctrl.Controller{Svc: os_, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:  authC,
		Book:  bookC,
		Order: orderC,
		User:  userC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
