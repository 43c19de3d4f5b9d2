package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/qjiujiu/toy-readhub/app/echoServer/controller/auth"
	"github.com/qjiujiu/toy-readhub/app/echoServer/controller/book"
	"github.com/qjiujiu/toy-readhub/app/echoServer/controller/order"
	"github.com/qjiujiu/toy-readhub/app/echoServer/controller/user"
)

type C struct {
	Auth  *auth.Controller
	Book  *book.Controller
	Order *order.Controller
	User  *user.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	g := e.Group("/v1")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))

	// Books & locations
	g.POST("/books", c.Book.Ingest)
	g.POST("/books/batch", c.Book.IngestBatch)
	g.GET("/books", c.Book.List)
	g.GET("/books/:bid", c.Book.Detail)
	g.GET("/books/isbn/:isbn", c.Book.GetByISBN)
	g.GET("/books/title/:title", c.Book.FindByTitle)
	g.GET("/books/author/:author", c.Book.FindByAuthor)
	g.PUT("/books/isbn/:isbn", c.Book.UpdateByISBN)
	g.DELETE("/books/isbn/:isbn", c.Book.DeleteByISBN)
	g.PATCH("/locations/:loc_id", c.Book.UpdateLocation)

	// Orders
	g.POST("/orders", c.Order.Create)
	g.POST("/orders/batch", c.Order.CreateBatch)
	g.GET("/orders", c.Order.List)
	g.GET("/orders/oid/:order_id", c.Order.GetByID)
	g.GET("/orders/user/:student_id", c.Order.ListByStudent)
	g.GET("/orders/book/:isbn", c.Order.ListByISBN)
	g.PUT("/orders/:order_id/status", c.Order.UpdateStatus)

	// Users
	g.GET("/users", c.User.List)
	g.GET("/users/me", c.User.Me)
	g.GET("/users/id/:uid", c.User.GetByID)
	g.GET("/users/student/:student_id", c.User.GetByStudentID)
	g.PUT("/users/:uid", c.User.Update)
	g.DELETE("/users/:uid", c.User.Delete)
}
